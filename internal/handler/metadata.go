package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/streambox/internal/service"
	"github.com/user/streambox/internal/utils"
)

// TrailerResponse 预告片
type TrailerResponse struct {
	*service.TMDBVideo
	URL string `json:"url"`
}

// Trending TMDB 本周热门
func (h *Handler) Trending(c *gin.Context) {
	if !h.tmdbReady(c) {
		return
	}

	titles, err := h.TMDB.Trending(c.Request.Context(), c.Param("kind"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, titles)
}

// MetadataDetails TMDB 详情
func (h *Handler) MetadataDetails(c *gin.Context) {
	id, ok := h.tmdbID(c)
	if !ok {
		return
	}

	details, err := h.TMDB.Details(c.Request.Context(), c.Param("kind"), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if details == nil {
		utils.NotFound(c, "Metadata not found")
		return
	}
	utils.Success(c, details)
}

// MetadataTrailer TMDB 预告片
func (h *Handler) MetadataTrailer(c *gin.Context) {
	id, ok := h.tmdbID(c)
	if !ok {
		return
	}

	video, err := h.TMDB.Trailer(c.Request.Context(), c.Param("kind"), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if video == nil {
		utils.NotFound(c, "Trailer not found")
		return
	}
	utils.Success(c, TrailerResponse{TMDBVideo: video, URL: video.URL()})
}

func (h *Handler) tmdbID(c *gin.Context) (int, bool) {
	if !h.tmdbReady(c) {
		return 0, false
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.ValidationFailed(c, map[string]string{"id": "must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *Handler) tmdbReady(c *gin.Context) bool {
	if h.TMDB == nil || !h.TMDB.Configured() {
		utils.Error(c, http.StatusServiceUnavailable, "TMDB is not configured")
		return false
	}
	return true
}
