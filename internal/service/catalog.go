package service

import (
	"context"
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/user/streambox/internal/model"
	"github.com/user/streambox/internal/repository"
	"github.com/user/streambox/internal/search"
)

// DefaultRowLimit 首页每一行默认条数
const DefaultRowLimit = 10

// EpisodeInput 剧集
type EpisodeInput struct {
	Title        string `json:"title" validate:"required"`
	Season       int    `json:"season" validate:"gte=0"`
	Episode      int    `json:"episode" validate:"gte=0"`
	VideoURL     string `json:"videoUrl" validate:"required,url"`
	Duration     string `json:"duration"`
	ThumbnailURL string `json:"thumbnailUrl" validate:"omitempty,url"`
	Overview     string `json:"overview"`
}

// ContentInput 新增内容请求
type ContentInput struct {
	Title        string         `json:"title" validate:"required"`
	Description  string         `json:"description" validate:"required"`
	ThumbnailURL string         `json:"thumbnailUrl" validate:"required"`
	BackdropURL  string         `json:"backdropUrl" validate:"required"`
	Type         string         `json:"type" validate:"required,oneof=movie series"`
	Genre        string         `json:"genre" validate:"required"`
	AgeRating    string         `json:"ageRating" validate:"required"`
	TrailerURL   string         `json:"trailerUrl" validate:"required,url"`
	VideoURL     string         `json:"videoUrl" validate:"omitempty,url"`
	Duration     string         `json:"duration"`
	Episodes     []EpisodeInput `json:"episodes" validate:"omitempty,dive"`
}

// FilterQuery 列表筛选
type FilterQuery struct {
	Type  string
	Genre string
	Limit int
}

// CatalogService 片库
type CatalogService struct {
	contents *repository.ContentRepository
	index    *search.Index
	rows     *cache.Cache
	log      *logrus.Entry
}

// NewCatalogService 创建片库服务，rows 缓存筛选结果，写入时整体失效
func NewCatalogService(contents *repository.ContentRepository, index *search.Index, rows *cache.Cache, log *logrus.Logger) *CatalogService {
	return &CatalogService{
		contents: contents,
		index:    index,
		rows:     rows,
		log:      log.WithField("component", "catalog"),
	}
}

// RebuildIndex 从数据库重建全文索引，同时清空筛选缓存
// 导入脚本或其他实例直接写库的内容由此对列表和搜索可见
func (s *CatalogService) RebuildIndex(ctx context.Context) (int, error) {
	all, err := s.contents.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	docs := make([]search.Document, 0, len(all))
	for _, c := range all {
		docs = append(docs, toDocument(c))
	}
	if err := s.index.IndexBatch(ctx, docs); err != nil {
		return 0, err
	}
	s.rows.Flush()
	return len(docs), nil
}

// CreateContent 管理员新增内容
func (s *CatalogService) CreateContent(ctx context.Context, account *model.Account, in ContentInput) (*model.Content, error) {
	if err := RequireAdmin(account); err != nil {
		return nil, err
	}
	return s.Create(ctx, in)
}

// Create 新增内容，不做权限校验（导入脚本和开放写入模式使用）
func (s *CatalogService) Create(ctx context.Context, in ContentInput) (*model.Content, error) {
	if err := validateContent(in); err != nil {
		return nil, err
	}

	content := &model.Content{
		Title:        in.Title,
		Description:  in.Description,
		ThumbnailURL: in.ThumbnailURL,
		BackdropURL:  in.BackdropURL,
		Type:         in.Type,
		Genre:        in.Genre,
		AgeRating:    in.AgeRating,
		TrailerURL:   in.TrailerURL,
		VideoURL:     in.VideoURL,
		Duration:     in.Duration,
		Episodes:     make([]model.Episode, 0, len(in.Episodes)),
	}
	for _, e := range in.Episodes {
		content.Episodes = append(content.Episodes, model.Episode{
			Title:        e.Title,
			Season:       e.Season,
			Episode:      e.Episode,
			VideoURL:     e.VideoURL,
			Duration:     e.Duration,
			ThumbnailURL: e.ThumbnailURL,
			Overview:     e.Overview,
		})
	}

	if err := s.contents.Create(ctx, content); err != nil {
		return nil, err
	}
	s.rows.Flush()

	if err := s.index.Index(ctx, toDocument(content)); err != nil {
		s.log.WithError(err).WithField("content_id", content.ID).Warn("index content failed")
	}
	return content, nil
}

// GetByID 获取内容
func (s *CatalogService) GetByID(ctx context.Context, id string) (*model.Content, error) {
	content, err := s.contents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, ErrContentNotFound
	}
	return content, nil
}

// Filter 按类型/分类筛选，最新的在前，最多 limit 条
func (s *CatalogService) Filter(ctx context.Context, q FilterQuery) ([]*model.Content, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultRowLimit
	}

	key := fmt.Sprintf("rows:%s:%s:%d", q.Type, q.Genre, q.Limit)
	if cached, ok := s.rows.Get(key); ok {
		return cached.([]*model.Content), nil
	}

	contents, err := s.contents.Filter(ctx, q.Type, q.Genre, q.Limit)
	if err != nil {
		return nil, err
	}
	s.rows.SetDefault(key, contents)
	return contents, nil
}

// Search 全文搜索 title 和 genre，不分页
func (s *CatalogService) Search(ctx context.Context, text string) ([]*model.Content, error) {
	ids, err := s.index.Search(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.contents.FindByIDs(ctx, ids)
}

// RecordView 播放次数 +1
func (s *CatalogService) RecordView(ctx context.Context, id string) error {
	n, err := s.contents.IncrementViews(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrContentNotFound
	}
	// 列表里带 viewCount
	s.rows.Flush()
	return nil
}

// DeleteContent 管理员删除内容
func (s *CatalogService) DeleteContent(ctx context.Context, account *model.Account, id string) error {
	if err := RequireAdmin(account); err != nil {
		return err
	}

	n, err := s.contents.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrContentNotFound
	}
	s.rows.Flush()

	if err := s.index.Delete(ctx, id); err != nil {
		s.log.WithError(err).WithField("content_id", id).Warn("remove content from index failed")
	}
	return nil
}

// validateContent 结构校验之外，再按类型检查字段
func validateContent(in ContentInput) error {
	err := validateStruct(in)
	if err != nil {
		return err
	}

	fields := map[string]string{}
	switch in.Type {
	case model.KindMovie:
		if len(in.Episodes) > 0 {
			fields["episodes"] = "only series can have episodes"
		}
	case model.KindSeries:
		if in.VideoURL != "" {
			fields["videoUrl"] = "series are played per episode"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func toDocument(c *model.Content) search.Document {
	return search.Document{ID: c.ID, Title: c.Title, Genre: c.Genre}
}
