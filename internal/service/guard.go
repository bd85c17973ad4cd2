package service

import (
	"context"

	"github.com/user/streambox/internal/model"
	"github.com/user/streambox/internal/repository"
)

// RequireAdmin 仅管理员通过
func RequireAdmin(account *model.Account) error {
	if account == nil || !account.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// Guard 档案归属校验
type Guard struct {
	profiles *repository.ProfileRepository
}

// NewGuard 创建归属校验
func NewGuard(profiles *repository.ProfileRepository) *Guard {
	return &Guard{profiles: profiles}
}

// RequireProfileOwner 加载档案并确认属于该账号
// 档案不存在与不属于该账号返回同一个错误
func (g *Guard) RequireProfileOwner(ctx context.Context, accountID, profileID string) (*model.Profile, error) {
	profile, err := g.profiles.FindOwned(ctx, profileID, accountID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}
