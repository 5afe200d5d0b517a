package admin

import (
	"errors"
	"strconv"

	"github.com/toranj-shop/internal/cache"
	"github.com/toranj-shop/internal/http/response"
	"github.com/toranj-shop/internal/repository"
	"github.com/toranj-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminUsers 获取用户列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	users, total, err := h.UserAdminService.List(repository.UserListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     c.Query("keyword"),
		IsActive:    parseBoolNullable(c.Query("is_active")),
		CreatedFrom: parseTimeNullable(c.Query("created_from")),
		CreatedTo:   parseTimeNullable(c.Query("created_to")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, users, pagination)
}

// GetAdminUser 获取用户详情
func (h *Handler) GetAdminUser(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	user, err := h.UserAdminService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	response.Success(c, user)
}

// SetUserActiveRequest 启用/停用用户请求
type SetUserActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetAdminUserActive 启用或停用用户账号
// 停用会吊销该用户的刷新令牌并失效登录态缓存
func (h *Handler) SetAdminUserActive(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	id, ok := uintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req SetUserActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, err := h.UserAdminService.SetActive(id, *req.IsActive)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	_ = cache.SetUserAuthState(c.Request.Context(), cache.BuildUserAuthState(user))

	requestLog(c).Infow("admin_user_set_active",
		"admin_id", adminID,
		"user_id", user.ID,
		"is_active", user.IsActive,
	)

	response.Success(c, user)
}
