package service

import (
	"go.uber.org/zap"

	"org-admin/backend/config"
	"org-admin/backend/internal/repository"
	"org-admin/backend/pkg/kv"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Department DepartmentService
	Export     ExportService
	Role       RoleService
	OperLog    OperLogService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache kv.Store,
	logger *zap.Logger,
) *Service {
	return &Service{
		Department: NewDepartmentService(repo, cache, cfg.Cache.DeptTreeTTL, logger),
		Export:     NewExportService(repo, logger),
		Role:       NewRoleService(repo, logger),
		OperLog:    NewOperLogService(repo, logger),
	}
}
