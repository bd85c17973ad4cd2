package repository

import (
	"context"
	"errors"
	"time"

	"github.com/user/streambox/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrProfileLimit 账号下的档案数已达上限
var ErrProfileLimit = errors.New("profile limit reached")

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// CreateWithLimit 在上限内创建档案
// 先锁住账号行，同一账号的并发创建会排队，计数不会被绕过
func (r *ProfileRepository) CreateWithLimit(ctx context.Context, p *model.Profile, limit int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner model.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", p.AccountID).
			First(&owner).Error; err != nil {
			return err
		}

		count, err := countByAccount(tx, p.AccountID)
		if err != nil {
			return err
		}
		if count >= int64(limit) {
			return ErrProfileLimit
		}

		return tx.Create(p).Error
	})
}

func countByAccount(tx *gorm.DB, accountID string) (int64, error) {
	var count int64
	err := tx.Model(&model.Profile{}).Where("account_id = ?", accountID).Count(&count).Error
	return count, err
}

// ListByAccount 按创建顺序列出账号下的档案
func (r *ProfileRepository) ListByAccount(ctx context.Context, accountID string) ([]*model.Profile, error) {
	profiles := make([]*model.Profile, 0)
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&profiles).Error
	return profiles, err
}

// FindOwned 查找属于该账号的档案，不存在或不属于该账号都返回 nil
func (r *ProfileRepository) FindOwned(ctx context.Context, id, accountID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Where("id = ? AND account_id = ?", id, accountID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// DeleteOwned 删除属于该账号的档案，返回受影响行数
func (r *ProfileRepository) DeleteOwned(ctx context.Context, id, accountID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND account_id = ?", id, accountID).Delete(&model.Profile{})
	return res.RowsAffected, res.Error
}

// Mutate 在一个事务里读取-修改-写回档案
// 读取时加行锁，片单和观看记录的修改不会互相覆盖；fn 返回 false 表示无需写回。
// 档案不存在或不属于该账号时返回 nil, nil
func (r *ProfileRepository) Mutate(ctx context.Context, id, accountID string, fn func(p *model.Profile) bool) (*model.Profile, error) {
	var out *model.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile model.Profile
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND account_id = ?", id, accountID).
			First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		out = &profile
		if !fn(&profile) {
			return nil
		}

		profile.UpdatedAt = time.Now()
		return tx.Model(&profile).
			Select("name", "avatar_url", "is_kid", "my_list", "watch_history", "updated_at").
			Updates(&profile).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
