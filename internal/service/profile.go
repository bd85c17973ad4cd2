package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/user/streambox/internal/model"
	"github.com/user/streambox/internal/repository"
)

const (
	// MaxProfilesPerAccount 每个账号最多 4 个档案
	MaxProfilesPerAccount = 4
	// DefaultAvatarURL 未指定头像时使用
	DefaultAvatarURL = "https://upload.wikimedia.org/wikipedia/commons/0/0b/Netflix-avatar.png"
)

// CreateProfileInput 创建档案请求
type CreateProfileInput struct {
	Name      string `json:"name" validate:"required,max=50"`
	AvatarURL string `json:"avatarUrl"`
	IsKid     bool   `json:"isKid"`
}

// UpdateProfileInput 部分更新，nil 字段保持不变
type UpdateProfileInput struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=50"`
	AvatarURL *string `json:"avatarUrl"`
	IsKid     *bool   `json:"isKid"`
}

// ListInput 加入片单请求
type ListInput struct {
	ContentID string `json:"contentId" validate:"required"`
	Type      string `json:"type" validate:"omitempty,oneof=movie series tv"`
}

// ProgressInput 上报观看进度
type ProgressInput struct {
	ContentID    string  `json:"contentId" validate:"required"`
	Progress     float64 `json:"progress" validate:"gte=0"`
	Duration     float64 `json:"duration" validate:"gte=0"`
	Title        string  `json:"title"`
	ThumbnailURL string  `json:"thumbnailUrl"`
}

// ProfileService 档案、片单与观看记录
type ProfileService struct {
	profiles *repository.ProfileRepository
	guard    *Guard
	log      *logrus.Entry
	now      func() time.Time
}

// NewProfileService 创建档案服务
func NewProfileService(profiles *repository.ProfileRepository, guard *Guard, log *logrus.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		guard:    guard,
		log:      log.WithField("component", "profiles"),
		now:      time.Now,
	}
}

// CreateProfile 创建档案，超过上限返回 ErrProfileLimitReached
func (s *ProfileService) CreateProfile(ctx context.Context, accountID string, in CreateProfileInput) (*model.Profile, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	avatar := in.AvatarURL
	if avatar == "" {
		avatar = DefaultAvatarURL
	}
	profile := &model.Profile{
		AccountID:    accountID,
		Name:         in.Name,
		AvatarURL:    avatar,
		IsKid:        in.IsKid,
		MyList:       []model.ListItem{},
		WatchHistory: []model.HistoryEntry{},
	}

	err := s.profiles.CreateWithLimit(ctx, profile, MaxProfilesPerAccount)
	if errors.Is(err, repository.ErrProfileLimit) {
		return nil, ErrProfileLimitReached
	}
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"account_id": accountID, "profile_id": profile.ID}).Info("profile created")
	return profile, nil
}

// ListProfiles 列出账号下的档案（按创建顺序）
func (s *ProfileService) ListProfiles(ctx context.Context, accountID string) ([]*model.Profile, error) {
	return s.profiles.ListByAccount(ctx, accountID)
}

// GetProfile 获取单个档案
func (s *ProfileService) GetProfile(ctx context.Context, accountID, profileID string) (*model.Profile, error) {
	return s.guard.RequireProfileOwner(ctx, accountID, profileID)
}

// DeleteProfile 删除档案，片单只存引用，无需级联清理
func (s *ProfileService) DeleteProfile(ctx context.Context, accountID, profileID string) error {
	if _, err := s.guard.RequireProfileOwner(ctx, accountID, profileID); err != nil {
		return err
	}

	n, err := s.profiles.DeleteOwned(ctx, profileID, accountID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	s.log.WithFields(logrus.Fields{"account_id": accountID, "profile_id": profileID}).Info("profile deleted")
	return nil
}

// UpdateProfile 部分更新名称、头像、儿童标记
func (s *ProfileService) UpdateProfile(ctx context.Context, accountID, profileID string, in UpdateProfileInput) (*model.Profile, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	return s.mutate(ctx, accountID, profileID, func(p *model.Profile) bool {
		changed := false
		if in.Name != nil && *in.Name != p.Name {
			p.Name = *in.Name
			changed = true
		}
		if in.AvatarURL != nil && *in.AvatarURL != p.AvatarURL {
			p.AvatarURL = *in.AvatarURL
			if p.AvatarURL == "" {
				p.AvatarURL = DefaultAvatarURL
			}
			changed = true
		}
		if in.IsKid != nil && *in.IsKid != p.IsKid {
			p.IsKid = *in.IsKid
			changed = true
		}
		return changed
	})
}

// GetList 获取片单
func (s *ProfileService) GetList(ctx context.Context, accountID, profileID string) ([]model.ListItem, error) {
	profile, err := s.guard.RequireProfileOwner(ctx, accountID, profileID)
	if err != nil {
		return nil, err
	}
	return profile.MyList, nil
}

// AddToList 加入片单，已存在时原样返回
func (s *ProfileService) AddToList(ctx context.Context, accountID, profileID string, in ListInput) ([]model.ListItem, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	kind := in.Type
	if kind == "" {
		kind = model.KindMovie
	}

	profile, err := s.mutate(ctx, accountID, profileID, func(p *model.Profile) bool {
		return p.AddToList(model.ListItem{ContentID: in.ContentID, Type: kind})
	})
	if err != nil {
		return nil, err
	}
	return profile.MyList, nil
}

// RemoveFromList 移出片单，不存在时不报错
func (s *ProfileService) RemoveFromList(ctx context.Context, accountID, profileID, contentID string) ([]model.ListItem, error) {
	profile, err := s.mutate(ctx, accountID, profileID, func(p *model.Profile) bool {
		return p.RemoveFromList(contentID)
	})
	if err != nil {
		return nil, err
	}
	return profile.MyList, nil
}

// GetHistory 获取观看记录（最近观看在前）
func (s *ProfileService) GetHistory(ctx context.Context, accountID, profileID string) ([]model.HistoryEntry, error) {
	profile, err := s.guard.RequireProfileOwner(ctx, accountID, profileID)
	if err != nil {
		return nil, err
	}
	return profile.WatchHistory, nil
}

// RecordWatchProgress 记录观看进度
// 旧记录被移除，新记录以当前时间放到最前面，整个过程在同一个事务里完成
func (s *ProfileService) RecordWatchProgress(ctx context.Context, accountID, profileID string, in ProgressInput) (*model.Profile, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	entry := model.HistoryEntry{
		ContentID:    in.ContentID,
		Progress:     in.Progress,
		Duration:     in.Duration,
		LastWatched:  s.now(),
		Title:        in.Title,
		ThumbnailURL: in.ThumbnailURL,
	}
	return s.mutate(ctx, accountID, profileID, func(p *model.Profile) bool {
		p.PushHistory(entry)
		return true
	})
}

// RemoveHistory 删除一条观看记录
func (s *ProfileService) RemoveHistory(ctx context.Context, accountID, profileID, contentID string) ([]model.HistoryEntry, error) {
	profile, err := s.mutate(ctx, accountID, profileID, func(p *model.Profile) bool {
		return p.RemoveHistory(contentID)
	})
	if err != nil {
		return nil, err
	}
	return profile.WatchHistory, nil
}

// mutate 带归属校验的读-改-写
func (s *ProfileService) mutate(ctx context.Context, accountID, profileID string, fn func(p *model.Profile) bool) (*model.Profile, error) {
	profile, err := s.profiles.Mutate(ctx, profileID, accountID, fn)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}
