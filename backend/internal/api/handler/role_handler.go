package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"org-admin/backend/internal/service"
	"org-admin/backend/pkg/response"
)

// RoleHandler 角色数据范围 HTTP 处理器
type RoleHandler struct {
	roleSvc service.RoleService
}

// NewRoleHandler 创建 RoleHandler
func NewRoleHandler(roleSvc service.RoleService) *RoleHandler {
	return &RoleHandler{roleSvc: roleSvc}
}

// ListDepartments 获取角色自定义数据范围的部门
// GET /api/v1/roles/:id/departments
func (h *RoleHandler) ListDepartments(c *gin.Context) {
	id, ok := MustParseID(c, "id", "角色")
	if !ok {
		return
	}

	result, err := h.roleSvc.ListDepartments(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		if errors.Is(err, service.ErrRoleNotFound) {
			response.NotFound(c, 14001, err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
