package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/streambox/internal/service"
	"github.com/user/streambox/internal/utils"
)

// ListProfiles 当前账号的档案
func (h *Handler) ListProfiles(c *gin.Context) {
	profiles, err := h.Profiles.ListProfiles(c.Request.Context(), account(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, profiles)
}

// CreateProfile 新建档案
func (h *Handler) CreateProfile(c *gin.Context) {
	var in service.CreateProfileInput
	if !bindJSON(c, &in) {
		return
	}

	profile, err := h.Profiles.CreateProfile(c.Request.Context(), account(c).ID, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Created(c, profile)
}

// GetProfile 档案详情
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.Profiles.GetProfile(c.Request.Context(), account(c).ID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, profile)
}

// UpdateProfile 修改名称、头像、儿童模式
func (h *Handler) UpdateProfile(c *gin.Context) {
	var in service.UpdateProfileInput
	if !bindJSON(c, &in) {
		return
	}

	profile, err := h.Profiles.UpdateProfile(c.Request.Context(), account(c).ID, c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, profile)
}

// DeleteProfile 删除档案
func (h *Handler) DeleteProfile(c *gin.Context) {
	if err := h.Profiles.DeleteProfile(c.Request.Context(), account(c).ID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, MessageResponse{Message: "Profile deleted successfully"})
}

// GetList 片单
func (h *Handler) GetList(c *gin.Context) {
	list, err := h.Profiles.GetList(c.Request.Context(), account(c).ID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, list)
}

// AddToList 加入片单
func (h *Handler) AddToList(c *gin.Context) {
	var in service.ListInput
	if !bindJSON(c, &in) {
		return
	}

	list, err := h.Profiles.AddToList(c.Request.Context(), account(c).ID, c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, list)
}

// RemoveFromList 移出片单
func (h *Handler) RemoveFromList(c *gin.Context) {
	list, err := h.Profiles.RemoveFromList(c.Request.Context(), account(c).ID, c.Param("id"), c.Param("contentId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, list)
}

// GetHistory 观看记录
func (h *Handler) GetHistory(c *gin.Context) {
	history, err := h.Profiles.GetHistory(c.Request.Context(), account(c).ID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, history)
}

// RecordProgress 上报观看进度，返回更新后的档案
func (h *Handler) RecordProgress(c *gin.Context) {
	var in service.ProgressInput
	if !bindJSON(c, &in) {
		return
	}

	profile, err := h.Profiles.RecordWatchProgress(c.Request.Context(), account(c).ID, c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, profile)
}

// RemoveHistory 删除一条观看记录
func (h *Handler) RemoveHistory(c *gin.Context) {
	history, err := h.Profiles.RemoveHistory(c.Request.Context(), account(c).ID, c.Param("id"), c.Param("contentId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, history)
}
