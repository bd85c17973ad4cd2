package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/streambox/internal/model"
	"github.com/user/streambox/internal/service"
	"github.com/user/streambox/internal/utils"
)

// ListContent 首页行列表，带 search 时走全文搜索
func (h *Handler) ListContent(c *gin.Context) {
	ctx := c.Request.Context()

	if q := c.Query("search"); q != "" {
		h.respondContents(c, func() ([]*model.Content, error) {
			return h.Catalog.Search(ctx, q)
		})
		return
	}

	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			utils.ValidationFailed(c, map[string]string{"limit": "must be a positive integer"})
			return
		}
		limit = n
	}

	h.respondContents(c, func() ([]*model.Content, error) {
		return h.Catalog.Filter(ctx, service.FilterQuery{
			Type:  c.Query("type"),
			Genre: c.Query("genre"),
			Limit: limit,
		})
	})
}

// SearchContent 全文搜索
func (h *Handler) SearchContent(c *gin.Context) {
	q := c.Query("q")
	h.respondContents(c, func() ([]*model.Content, error) {
		return h.Catalog.Search(c.Request.Context(), q)
	})
}

// GetContent 内容详情
func (h *Handler) GetContent(c *gin.Context) {
	content, err := h.Catalog.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, content)
}

// CreateContent 新增内容
func (h *Handler) CreateContent(c *gin.Context) {
	var in service.ContentInput
	if !bindJSON(c, &in) {
		return
	}

	var (
		content *model.Content
		err     error
	)
	if h.Config.ContentWriteOpen {
		content, err = h.Catalog.Create(c.Request.Context(), in)
	} else {
		content, err = h.Catalog.CreateContent(c.Request.Context(), account(c), in)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Created(c, content)
}

// DeleteContent 删除内容
func (h *Handler) DeleteContent(c *gin.Context) {
	if err := h.Catalog.DeleteContent(c.Request.Context(), account(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, MessageResponse{Message: "Content deleted successfully"})
}

// RecordView 播放计数
func (h *Handler) RecordView(c *gin.Context) {
	if err := h.Catalog.RecordView(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "View recorded", nil)
}

func (h *Handler) respondContents(c *gin.Context, fetch func() ([]*model.Content, error)) {
	contents, err := fetch()
	if err != nil {
		h.respondError(c, err)
		return
	}
	if contents == nil {
		contents = []*model.Content{}
	}
	utils.Success(c, contents)
}
