package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/toranj-shop/internal/http/response"
	"github.com/toranj-shop/internal/i18n"
	"github.com/toranj-shop/internal/repository"
	"github.com/toranj-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListReviews 管理端评价列表
// 默认含未审核评价，approved=true 时只看已上架的
func (h *Handler) AdminListReviews(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ReviewListFilter{
		Page:     page,
		PageSize: pageSize,
	}
	if raw := strings.TrimSpace(c.Query("product_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.ProductID = uint(parsed)
		}
	}
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.UserID = uint(parsed)
		}
	}
	if approved := parseBoolNullable(c.Query("approved")); approved != nil && *approved {
		filter.ApprovedOnly = true
	}

	reviews, total, err := h.ReviewService.ListAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.NewPagination(page, pageSize, total)
	response.SuccessWithPage(c, reviews, pagination)
}

// AdminApproveReview 审核通过评价
func (h *Handler) AdminApproveReview(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	review, err := h.ReviewService.Approve(id)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			respondError(c, response.CodeNotFound, "error.review_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	response.Success(c, review)
}

// AdminDeleteReview 删除评价
func (h *Handler) AdminDeleteReview(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.ReviewService.Delete(id); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			respondError(c, response.CodeNotFound, "error.review_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	locale := i18n.ResolveLocale(c)
	response.SuccessWithMsg(c, i18n.T(locale, "msg.review_deleted"), nil)
}
