package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/user/streambox/internal/config"
	"github.com/user/streambox/internal/utils"
	"golang.org/x/sync/singleflight"
)

const (
	tmdbFetchTimeout = 15 * time.Second
	tmdbImageBase    = "https://image.tmdb.org/t/p"
	youtubeWatch     = "https://www.youtube.com/watch?v="
)

// ErrUnsupportedMediaKind TMDB 只支持 movie 和 tv
var ErrUnsupportedMediaKind = &ValidationError{Fields: map[string]string{"kind": "must be one of: movie, tv"}}

// TMDBTitle 榜单/发现接口中的条目
type TMDBTitle struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"` // 电视剧
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Adult        bool    `json:"adult"`
	MediaType    string  `json:"media_type"`
	GenreIDs     []int   `json:"genre_ids"`
	VoteAverage  float64 `json:"vote_average"`
}

// DisplayTitle 电影取 title，电视剧取 name
func (t TMDBTitle) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.Name
}

// TMDBDetails 详情
type TMDBDetails struct {
	ID             int     `json:"id"`
	Title          string  `json:"title"`
	Name           string  `json:"name"`
	OriginalTitle  string  `json:"original_title"`
	Overview       string  `json:"overview"`
	ReleaseDate    string  `json:"release_date"`
	FirstAirDate   string  `json:"first_air_date"` // 电视剧
	Runtime        int     `json:"runtime"`
	EpisodeRunTime []int   `json:"episode_run_time"` // 电视剧
	PosterPath     string  `json:"poster_path"`
	BackdropPath   string  `json:"backdrop_path"`
	VoteAverage    float64 `json:"vote_average"`
	Genres         []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// TMDBVideo 预告片
type TMDBVideo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// URL 可直接嵌入播放的地址
func (v *TMDBVideo) URL() string {
	if v == nil || v.Site != "YouTube" {
		return ""
	}
	return youtubeWatch + v.Key
}

type tmdbListResponse struct {
	Results []TMDBTitle `json:"results"`
}

type tmdbVideosResponse struct {
	Results []TMDBVideo `json:"results"`
}

// TMDBService TMDB 元数据查询，结果按 TTL 缓存，同一 key 的并发请求只打一次上游
type TMDBService struct {
	client  *utils.HTTPClient
	baseURL string
	token   string
	apiKey  string
	cache   *utils.TTLCache[any]
	group   singleflight.Group
	log     *logrus.Entry
}

// NewTMDBService 创建 TMDB 服务
func NewTMDBService(cfg *config.Config, log *logrus.Logger) *TMDBService {
	return &TMDBService{
		client:  utils.NewHTTPClient(tmdbFetchTimeout),
		baseURL: cfg.TMDBBaseURL,
		token:   cfg.TMDBToken,
		apiKey:  cfg.TMDBAPIKey,
		cache:   utils.NewTTLCache[any](1000, cfg.TMDBCacheTTL),
		log:     log.WithField("component", "tmdb"),
	}
}

// Configured 是否配置了 TMDB 凭证
func (s *TMDBService) Configured() bool {
	return s.token != "" || s.apiKey != ""
}

// Trending 本周热门
func (s *TMDBService) Trending(ctx context.Context, kind string) ([]TMDBTitle, error) {
	if err := checkMediaKind(kind); err != nil {
		return nil, err
	}
	v, err := s.cached(ctx, "trending:"+kind, func(ctx context.Context) (any, error) {
		var res tmdbListResponse
		if err := s.get(ctx, fmt.Sprintf("/trending/%s/week", kind), url.Values{"language": {"en-US"}}, &res); err != nil {
			return nil, err
		}
		return res.Results, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]TMDBTitle), nil
}

// Details 详情，TMDB 返回 404 时结果为 nil
func (s *TMDBService) Details(ctx context.Context, kind string, id int) (*TMDBDetails, error) {
	if err := checkMediaKind(kind); err != nil {
		return nil, err
	}
	v, err := s.cached(ctx, fmt.Sprintf("details:%s:%d", kind, id), func(ctx context.Context) (any, error) {
		var res TMDBDetails
		err := s.get(ctx, fmt.Sprintf("/%s/%d", kind, id), url.Values{"language": {"en-US"}}, &res)
		if isNotFound(err) {
			return (*TMDBDetails)(nil), nil
		}
		if err != nil {
			return nil, err
		}
		return &res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TMDBDetails), nil
}

// Trailer 优先 "Official Trailer"，其次任意 Trailer；没有时返回 nil
func (s *TMDBService) Trailer(ctx context.Context, kind string, id int) (*TMDBVideo, error) {
	if err := checkMediaKind(kind); err != nil {
		return nil, err
	}
	v, err := s.cached(ctx, fmt.Sprintf("trailer:%s:%d", kind, id), func(ctx context.Context) (any, error) {
		var res tmdbVideosResponse
		err := s.get(ctx, fmt.Sprintf("/%s/%d/videos", kind, id), nil, &res)
		if isNotFound(err) {
			return (*TMDBVideo)(nil), nil
		}
		if err != nil {
			return nil, err
		}
		return pickTrailer(res.Results), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TMDBVideo), nil
}

// ImageURL 拼接图片地址，size 如 w500、original
func ImageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return tmdbImageBase + "/" + size + path
}

// cached 先查缓存，未命中时同一 key 只发一次请求
// 共享请求不随任何一个调用方取消，每个调用方只等待自己的 ctx
func (s *TMDBService) cached(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		if v, ok := s.cache.Get(key); ok {
			return v, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tmdbFetchTimeout)
		defer cancel()

		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.log.WithError(res.Err).WithField("key", key).Warn("tmdb request failed")
			return nil, res.Err
		}
		return res.Val, nil
	}
}

func (s *TMDBService) get(ctx context.Context, path string, query url.Values, target interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	headers := map[string]string{}
	if s.token != "" {
		headers["Authorization"] = "Bearer " + s.token
	} else if s.apiKey != "" {
		query.Set("api_key", s.apiKey)
	}

	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return s.client.GetJSON(ctx, u, headers, target)
}

func pickTrailer(videos []TMDBVideo) *TMDBVideo {
	for i := range videos {
		if videos[i].Name == "Official Trailer" {
			return &videos[i]
		}
	}
	for i := range videos {
		if videos[i].Type == "Trailer" {
			return &videos[i]
		}
	}
	return nil
}

func checkMediaKind(kind string) error {
	if kind != "movie" && kind != "tv" {
		return ErrUnsupportedMediaKind
	}
	return nil
}

func isNotFound(err error) bool {
	var se *utils.StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}
