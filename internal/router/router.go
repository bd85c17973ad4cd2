package router

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/streambox/internal/handler"
	"github.com/user/streambox/internal/middleware"
)

// NewEngine 创建带全局中间件的 gin 实例并注册路由
func NewEngine(h *handler.Handler) *gin.Engine {
	if h.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(h.Log))
	r.Use(middleware.Metrics())
	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.Security())
	r.Use(middleware.CORS(h.Config.CORSOrigin))

	RegisterRoutes(r, h)
	return r
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(h.Auth)

	// ==================== 认证 ====================
	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.GET("/test", requireAuth, h.AuthTest)
	}

	// ==================== 片库 ====================
	content := r.Group("/content")
	{
		content.GET("", h.ListContent)
		content.GET("/search", h.SearchContent)
		content.GET("/:id", h.GetContent)
		content.POST("/:id/view", h.RecordView)
		content.DELETE("/:id", requireAuth, middleware.RequireAdmin(), h.DeleteContent)

		if h.Config.ContentWriteOpen {
			content.POST("", h.CreateContent)
		} else {
			content.POST("", requireAuth, middleware.RequireAdmin(), h.CreateContent)
		}
	}

	// ==================== 档案（需要登录）====================
	profiles := r.Group("/profiles")
	profiles.Use(requireAuth)
	{
		profiles.GET("", h.ListProfiles)
		profiles.POST("", h.CreateProfile)
		profiles.GET("/:id", h.GetProfile)
		profiles.PATCH("/:id", h.UpdateProfile)
		profiles.DELETE("/:id", h.DeleteProfile)

		profiles.GET("/:id/list", h.GetList)
		profiles.POST("/:id/list", h.AddToList)
		profiles.DELETE("/:id/list/:contentId", h.RemoveFromList)

		profiles.GET("/:id/history", h.GetHistory)
		profiles.POST("/:id/history", h.RecordProgress)
		profiles.DELETE("/:id/history/:contentId", h.RemoveHistory)
	}

	// ==================== TMDB 元数据 ====================
	metadata := r.Group("/metadata")
	{
		metadata.GET("/:kind/trending", h.Trending)
		metadata.GET("/:kind/:id", h.MetadataDetails)
		metadata.GET("/:kind/:id/trailer", h.MetadataTrailer)
	}
}
