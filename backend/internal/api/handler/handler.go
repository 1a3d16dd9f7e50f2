package handler

import "org-admin/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Department *DepartmentHandler
	Export     *ExportHandler
	Role       *RoleHandler
	OperLog    *OperLogHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Department: NewDepartmentHandler(svc.Department),
		Export:     NewExportHandler(svc.Export),
		Role:       NewRoleHandler(svc.Role),
		OperLog:    NewOperLogHandler(svc.OperLog),
	}
}
