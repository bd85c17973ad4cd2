package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/streambox/internal/service"
	"github.com/user/streambox/internal/utils"
)

// TokenResponse 注册返回
type TokenResponse struct {
	Token string `json:"token"`
}

// Signup 注册
func (h *Handler) Signup(c *gin.Context) {
	var in service.SignupInput
	if !bindJSON(c, &in) {
		return
	}

	token, err := h.Auth.Register(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Created(c, TokenResponse{Token: token})
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var in service.LoginInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.Auth.Authenticate(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, res)
}

// AuthTest 校验 token 是否有效
func (h *Handler) AuthTest(c *gin.Context) {
	utils.Success(c, gin.H{
		"message": "You are authorized!",
		"user":    account(c).Summary(),
	})
}
