package admin

import (
	"errors"

	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminUserListQuery 用户列表查询参数
type AdminUserListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Keyword  string `form:"keyword"`
	Role     string `form:"role"`
	Status   string `form:"status"`
}

// UpdateUserStatusRequest 用户状态更新请求
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminUsers 管理端用户列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	var query AdminUserListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	page, pageSize := shared.NormalizePagination(query.Page, query.PageSize)

	users, total, err := h.UserAuthService.AdminListUsers(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  query.Keyword,
		Role:     query.Role,
		Status:   query.Status,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "fetch users failed", err)
		return
	}

	response.SuccessWithPage(c, gin.H{"items": users}, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// UpdateAdminUserStatus 启用/禁用用户。禁用会使其现有 token 全部失效。
func (h *Handler) UpdateAdminUserStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	user, err := h.UserAuthService.AdminUpdateUserStatus(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "user not found", nil)
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "status invalid", nil)
		default:
			respondError(c, response.CodeInternal, "update user status failed", err)
		}
		return
	}

	response.Success(c, user)
}
