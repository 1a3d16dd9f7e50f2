package handler

import (
	"github.com/gin-gonic/gin"

	"org-admin/backend/internal/dto"
	"org-admin/backend/internal/service"
	"org-admin/backend/pkg/response"
)

// OperLogHandler 操作日志 HTTP 处理器
type OperLogHandler struct {
	operLogSvc service.OperLogService
}

// NewOperLogHandler 创建 OperLogHandler
func NewOperLogHandler(operLogSvc service.OperLogService) *OperLogHandler {
	return &OperLogHandler{operLogSvc: operLogSvc}
}

// ListOperLogs 分页查询操作日志
// GET /api/v1/oper-logs
func (h *OperLogHandler) ListOperLogs(c *gin.Context) {
	var req dto.OperLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "参数校验失败")
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	list, total, err := h.operLogSvc.List(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}
