package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"org-admin/backend/internal/dto"
	"org-admin/backend/internal/service"
	"org-admin/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportDepartments 导出部门列表
// GET /api/v1/departments/export?description=&status=
func (h *ExportHandler) ExportDepartments(c *gin.Context) {
	var query dto.DepartmentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportDepartments(c.Request.Context(), &query)
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
