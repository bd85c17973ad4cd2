package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/user/streambox/internal/model"
	"github.com/user/streambox/internal/repository"
)

const (
	// SampleVideoURL 导入的电影统一使用的示例视频
	SampleVideoURL = "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4"
	// PlaceholderTrailerURL 找不到预告片时使用
	PlaceholderTrailerURL = "https://www.youtube.com/watch?v=dummy"
	defaultSeedGenre      = "Trending"
)

// tmdbGenres TMDB genre_ids 对应的名称（电影与电视剧合并）
var tmdbGenres = map[int]string{
	28: "Action", 12: "Adventure", 16: "Animation", 35: "Comedy", 80: "Crime",
	99: "Documentary", 18: "Drama", 10751: "Family", 14: "Fantasy", 36: "History",
	27: "Horror", 10402: "Music", 9648: "Mystery", 10749: "Romance", 878: "Science Fiction",
	10770: "TV Movie", 53: "Thriller", 10752: "War", 37: "Western",
	10759: "Action & Adventure", 10762: "Kids", 10763: "News", 10764: "Reality",
	10765: "Sci-Fi & Fantasy", 10766: "Soap", 10767: "Talk", 10768: "War & Politics",
}

// SeedResult 导入统计
type SeedResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Seeder 从 TMDB 热门榜导入片库
type Seeder struct {
	tmdb     *TMDBService
	catalog  *CatalogService
	contents *repository.ContentRepository
	log      *logrus.Entry
}

// NewSeeder 创建导入器
func NewSeeder(tmdb *TMDBService, catalog *CatalogService, contents *repository.ContentRepository, log *logrus.Logger) *Seeder {
	return &Seeder{
		tmdb:     tmdb,
		catalog:  catalog,
		contents: contents,
		log:      log.WithField("component", "seed"),
	}
}

// SeedTrending 导入本周热门，标题已存在或缺少海报的条目跳过
// kind 为 movie 或 tv，tv 导入为 series
func (s *Seeder) SeedTrending(ctx context.Context, kind string) (*SeedResult, error) {
	titles, err := s.tmdb.Trending(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("获取热门榜失败: %w", err)
	}

	res := &SeedResult{}
	for _, t := range titles {
		title := t.DisplayTitle()
		if title == "" || t.PosterPath == "" || t.BackdropPath == "" {
			res.Skipped++
			continue
		}

		exists, err := s.contents.ExistsByTitle(ctx, title)
		if err != nil {
			return res, err
		}
		if exists {
			res.Skipped++
			continue
		}

		trailer, err := s.tmdb.Trailer(ctx, kind, t.ID)
		if err != nil {
			// 预告片不是必需的
			s.log.WithError(err).WithField("tmdb_id", t.ID).Warn("fetch trailer failed")
			trailer = nil
		}

		if _, err := s.catalog.Create(ctx, ToContentInput(kind, t, trailer)); err != nil {
			s.log.WithError(err).WithField("title", title).Warn("seed content failed")
			res.Skipped++
			continue
		}
		res.Created++
	}

	s.log.WithFields(logrus.Fields{"kind": kind, "created": res.Created, "skipped": res.Skipped}).Info("seed finished")
	return res, nil
}

// ToContentInput 将 TMDB 条目转换为新增内容请求
func ToContentInput(kind string, t TMDBTitle, trailer *TMDBVideo) ContentInput {
	ageRating := "12+"
	if t.Adult {
		ageRating = "18+"
	}
	trailerURL := trailer.URL()
	if trailerURL == "" {
		trailerURL = PlaceholderTrailerURL
	}
	description := t.Overview
	if description == "" {
		description = t.DisplayTitle()
	}

	in := ContentInput{
		Title:        t.DisplayTitle(),
		Description:  description,
		ThumbnailURL: ImageURL("w500", t.PosterPath),
		BackdropURL:  ImageURL("original", t.BackdropPath),
		Genre:        genreName(t.GenreIDs),
		AgeRating:    ageRating,
		TrailerURL:   trailerURL,
	}
	if kind == "tv" {
		in.Type = model.KindSeries
	} else {
		in.Type = model.KindMovie
		in.VideoURL = SampleVideoURL
	}
	return in
}

func genreName(ids []int) string {
	for _, id := range ids {
		if name, ok := tmdbGenres[id]; ok {
			return name
		}
	}
	return defaultSeedGenre
}
