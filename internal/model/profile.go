package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListItem “我的片单”中的一条引用
type ListItem struct {
	ContentID string `json:"id"`
	Type      string `json:"type"`
}

// HistoryEntry 观看进度，每个 ContentID 最多一条
type HistoryEntry struct {
	ContentID    string    `json:"contentId"`
	Progress     float64   `json:"progress"` // 秒
	Duration     float64   `json:"duration"` // 秒
	LastWatched  time.Time `json:"lastWatched"`
	Title        string    `json:"title,omitempty"`        // 冗余存储，便于展示
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"` // 冗余存储，便于展示
}

// Profile 账号下的观影档案
type Profile struct {
	ID           string         `json:"id" gorm:"primaryKey;size:36"`
	AccountID    string         `json:"userId" gorm:"index;not null;size:36"`
	Name         string         `json:"name" gorm:"not null"`
	AvatarURL    string         `json:"avatarUrl"`
	IsKid        bool           `json:"isKid" gorm:"default:false"`
	MyList       []ListItem     `json:"myList" gorm:"serializer:json"`
	WatchHistory []HistoryEntry `json:"watchHistory" gorm:"serializer:json"`
	CreatedAt    time.Time      `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// BeforeCreate 生成主键
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.normalize()
	return nil
}

// AfterFind 保证返回给客户端的是空数组而不是 null
func (p *Profile) AfterFind(tx *gorm.DB) error {
	p.normalize()
	return nil
}

func (p *Profile) normalize() {
	if p.MyList == nil {
		p.MyList = []ListItem{}
	}
	if p.WatchHistory == nil {
		p.WatchHistory = []HistoryEntry{}
	}
}

// InList 片单中是否已有该内容
func (p *Profile) InList(contentID string) bool {
	for _, item := range p.MyList {
		if item.ContentID == contentID {
			return true
		}
	}
	return false
}

// AddToList 幂等添加，已存在时不做任何修改
func (p *Profile) AddToList(item ListItem) bool {
	if p.InList(item.ContentID) {
		return false
	}
	p.MyList = append(p.MyList, item)
	return true
}

// RemoveFromList 移除匹配项，不存在时为空操作
func (p *Profile) RemoveFromList(contentID string) bool {
	kept := make([]ListItem, 0, len(p.MyList))
	for _, item := range p.MyList {
		if item.ContentID != contentID {
			kept = append(kept, item)
		}
	}
	removed := len(kept) != len(p.MyList)
	p.MyList = kept
	return removed
}

// PushHistory 先删除同一内容的旧记录，再把新记录放到最前面
func (p *Profile) PushHistory(entry HistoryEntry) {
	history := make([]HistoryEntry, 0, len(p.WatchHistory)+1)
	history = append(history, entry)
	for _, h := range p.WatchHistory {
		if h.ContentID != entry.ContentID {
			history = append(history, h)
		}
	}
	p.WatchHistory = history
}

// RemoveHistory 删除某个内容的观看记录
func (p *Profile) RemoveHistory(contentID string) bool {
	kept := make([]HistoryEntry, 0, len(p.WatchHistory))
	for _, h := range p.WatchHistory {
		if h.ContentID != contentID {
			kept = append(kept, h)
		}
	}
	removed := len(kept) != len(p.WatchHistory)
	p.WatchHistory = kept
	return removed
}
