package handler

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/user/streambox/internal/config"
	"github.com/user/streambox/internal/middleware"
	"github.com/user/streambox/internal/model"
	"github.com/user/streambox/internal/service"
	"github.com/user/streambox/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Auth     *service.AuthService
	Profiles *service.ProfileService
	Catalog  *service.CatalogService
	TMDB     *service.TMDBService
	Config   *config.Config
	Log      *logrus.Logger
}

// NewHandler 创建处理器
func NewHandler(auth *service.AuthService, profiles *service.ProfileService, catalog *service.CatalogService, tmdb *service.TMDBService, cfg *config.Config, log *logrus.Logger) *Handler {
	return &Handler{
		Auth:     auth,
		Profiles: profiles,
		Catalog:  catalog,
		TMDB:     tmdb,
		Config:   cfg,
		Log:      log,
	}
}

// MessageResponse 只带一条消息的响应体
type MessageResponse struct {
	Message string `json:"message"`
}

// bindJSON 解析请求体，失败时直接写 400
// 字段类型不对时按字段返回，和校验失败的格式一致
func bindJSON(c *gin.Context, target interface{}) bool {
	err := c.ShouldBindJSON(target)
	if err == nil {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		utils.ValidationFailed(c, map[string]string{typeErr.Field: "is invalid"})
		return false
	}
	utils.BadRequest(c, "Invalid request body")
	return false
}

// account 当前登录账号，路由保证已经过 RequireAuth
func account(c *gin.Context) *model.Account {
	return middleware.GetAccount(c)
}

// respondError 将业务错误映射为统一响应，未知错误记日志并返回 500
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		utils.ValidationFailed(c, verr.Fields)
		return
	}

	var se *service.Error
	if errors.As(err, &se) {
		utils.Error(c, se.Status, se.Message)
		return
	}

	_ = c.Error(err)
	h.Log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("request failed")
	utils.InternalServerError(c, "")
}
