package repository

import (
	"context"
	"errors"

	"github.com/user/streambox/internal/model"
	"gorm.io/gorm"
)

type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Create 新增内容
func (r *ContentRepository) Create(ctx context.Context, c *model.Content) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// FindByID 根据 ID 查找内容，不存在返回 nil
func (r *ContentRepository) FindByID(ctx context.Context, id string) (*model.Content, error) {
	var content model.Content
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&content).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &content, nil
}

// FindByIDs 批量查找，结果顺序与 ids 一致，缺失的跳过
func (r *ContentRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Content, error) {
	result := make([]*model.Content, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var contents []*model.Content
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&contents).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Content, len(contents))
	for _, c := range contents {
		byID[c.ID] = c
	}
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			result = append(result, c)
		}
	}
	return result, nil
}

// Filter 按类型和分类筛选（同时给出时为 AND），最新创建的在前
func (r *ContentRepository) Filter(ctx context.Context, kind, genre string, limit int) ([]*model.Content, error) {
	contents := make([]*model.Content, 0)
	q := r.db.WithContext(ctx).Model(&model.Content{})
	if kind != "" {
		q = q.Where("type = ?", kind)
	}
	if genre != "" {
		q = q.Where("genre = ?", genre)
	}
	err := q.Order("created_at DESC").Limit(limit).Find(&contents).Error
	return contents, err
}

// ListAll 获取全部内容（用于重建搜索索引）
func (r *ContentRepository) ListAll(ctx context.Context) ([]*model.Content, error) {
	var contents []*model.Content
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&contents).Error
	return contents, err
}

// ExistsByTitle 是否已有同名内容
func (r *ContentRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Content{}).Where("title = ?", title).Count(&count).Error
	return count > 0, err
}

// IncrementViews 播放次数 +1，返回受影响行数
func (r *ContentRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Content{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	return res.RowsAffected, res.Error
}

// Delete 删除内容，返回受影响行数
func (r *ContentRepository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Content{})
	return res.RowsAffected, res.Error
}
