package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"org-admin/backend/internal/dto"
	"org-admin/backend/internal/repository"
)

// ── 角色模块业务错误 ──

var ErrRoleNotFound = errors.New("角色不存在")

// RoleService 角色业务接口（仅数据范围相关）
type RoleService interface {
	// ListDepartments 查询角色自定义数据范围绑定的部门
	ListDepartments(ctx context.Context, roleID uint64) (*dto.RoleDepartmentsResponse, error)
}

type roleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRoleService 创建 RoleService 实例
func NewRoleService(repo *repository.Repository, logger *zap.Logger) RoleService {
	return &roleService{repo: repo, logger: logger}
}

func (s *roleService) ListDepartments(ctx context.Context, roleID uint64) (*dto.RoleDepartmentsResponse, error) {
	if _, err := s.repo.Role.GetByID(ctx, roleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		s.logger.Error("查询角色失败", zap.Uint64("role_id", roleID), zap.Error(err))
		return nil, err
	}

	ids, err := s.repo.Role.ListDeptIDs(ctx, roleID)
	if err != nil {
		s.logger.Error("查询角色数据范围失败", zap.Uint64("role_id", roleID), zap.Error(err))
		return nil, err
	}
	if ids == nil {
		ids = []uint64{}
	}

	return &dto.RoleDepartmentsResponse{RoleID: roleID, DeptIDs: ids}, nil
}
