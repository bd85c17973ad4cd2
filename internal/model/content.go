package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	KindMovie  = "movie"
	KindSeries = "series"
)

// Episode 剧集（仅 series）
type Episode struct {
	Title        string `json:"title"`
	Season       int    `json:"season"`
	Episode      int    `json:"episode"`
	VideoURL     string `json:"videoUrl"`
	Duration     string `json:"duration"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Overview     string `json:"overview,omitempty"`
}

// Content 片库条目，电影或剧集
type Content struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Title        string    `json:"title" gorm:"not null"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	BackdropURL  string    `json:"backdropUrl"`
	Type         string    `json:"type" gorm:"index;not null"`
	Genre        string    `json:"genre" gorm:"index"`
	AgeRating    string    `json:"ageRating"`
	TrailerURL   string    `json:"trailerUrl"`
	ViewCount    int64     `json:"viewCount" gorm:"default:0"`
	VideoURL     string    `json:"videoUrl,omitempty"` // 仅 movie
	Duration     string    `json:"duration,omitempty"` // 仅 movie，如 "2h 15m"
	Episodes     []Episode `json:"episodes" gorm:"serializer:json"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate 生成主键
func (c *Content) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Episodes == nil {
		c.Episodes = []Episode{}
	}
	return nil
}

// AfterFind 同上，避免 episodes 序列化为 null
func (c *Content) AfterFind(tx *gorm.DB) error {
	if c.Episodes == nil {
		c.Episodes = []Episode{}
	}
	return nil
}
