package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"org-admin/backend/internal/dto"
	"org-admin/backend/internal/service"
	pkgerrors "org-admin/backend/pkg/errors"
	"org-admin/backend/pkg/response"
)

// DepartmentHandler 部门模块 HTTP 处理器
type DepartmentHandler struct {
	deptSvc service.DepartmentService
}

// NewDepartmentHandler 创建 DepartmentHandler
func NewDepartmentHandler(deptSvc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptSvc: deptSvc}
}

// GetTree 获取部门树
// GET /api/v1/departments/tree?description=&status=
func (h *DepartmentHandler) GetTree(c *gin.Context) {
	var query dto.DepartmentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "参数校验失败")
		return
	}

	tree, err := h.deptSvc.Tree(c.Request.Context(), &query)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": tree})
}

// GetOptions 获取部门下拉选项（仅启用部门）
// GET /api/v1/departments/options
func (h *DepartmentHandler) GetOptions(c *gin.Context) {
	options, err := h.deptSvc.Options(c.Request.Context())
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": options})
}

// GetDepartment 获取部门详情
// GET /api/v1/departments/:id
func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	id, ok := MustParseID(c, "id", "部门")
	if !ok {
		return
	}

	dept, err := h.deptSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, dept)
}

// ListDescendants 获取部门的全部下级部门
// GET /api/v1/departments/:id/descendants
func (h *DepartmentHandler) ListDescendants(c *gin.Context) {
	id, ok := MustParseID(c, "id", "部门")
	if !ok {
		return
	}

	depts, err := h.deptSvc.Descendants(c.Request.Context(), id)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": depts})
}

// CreateDepartment 创建部门
// POST /api/v1/departments
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	dept, err := h.deptSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.Created(c, dept)
}

// UpdateDepartment 更新部门（parent_id 变化即为移动）
// PUT /api/v1/departments/:id
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	id, ok := MustParseID(c, "id", "部门")
	if !ok {
		return
	}

	var req dto.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	dept, err := h.deptSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, dept)
}

// DeleteDepartment 删除部门
// DELETE /api/v1/departments/:id
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	id, ok := MustParseID(c, "id", "部门")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.deptSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleDepartmentError 统一处理部门模块业务错误
// 业务错误信息携带部门名称，原样返回给调用方
func (h *DepartmentHandler) handleDepartmentError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrDepartmentNameExists):
		response.BadRequest(c, 13002, err.Error())
	case errors.Is(err, service.ErrDepartmentProtected):
		response.Forbidden(c, 13003, err.Error())
	case errors.Is(err, service.ErrDepartmentHasEnabledChildren):
		response.BadRequest(c, 13004, err.Error())
	case errors.Is(err, service.ErrDepartmentDisabledAncestor):
		response.BadRequest(c, 13005, err.Error())
	case errors.Is(err, service.ErrDepartmentSelfParent):
		response.BadRequest(c, 13006, err.Error())
	case errors.Is(err, service.ErrDepartmentMoveIntoSubtree):
		response.BadRequest(c, 13007, err.Error())
	case errors.Is(err, service.ErrDepartmentHasChildren):
		response.BadRequest(c, 13008, err.Error())
	case errors.Is(err, service.ErrDepartmentHasUsers):
		response.BadRequest(c, 13009, err.Error())
	case errors.Is(err, service.ErrParentDepartmentNotFound):
		response.BadRequest(c, 13010, err.Error())
	case errors.Is(err, service.ErrDepartmentNameEmpty):
		response.BadRequest(c, 13011, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, response.CodeConflict, err.Error())
	default:
		response.InternalError(c)
	}
}
