package repository

import (
	"context"

	"gorm.io/gorm"

	"org-admin/backend/internal/model"
)

// RoleRepository 角色及其自定义数据范围（sys_role_dept）数据访问接口
type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	GetByID(ctx context.Context, id uint64) (*model.Role, error)
	BindDepts(ctx context.Context, roleID uint64, deptIDs []uint64) error
	ListDeptIDs(ctx context.Context, roleID uint64) ([]uint64, error)
	// DeleteDeptLinks 删除引用指定部门的全部角色关联
	DeleteDeptLinks(ctx context.Context, deptID uint64) (int64, error)
}

type roleRepo struct {
	db *gorm.DB
}

// NewRoleRepo 创建 RoleRepository 实例
func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) Create(ctx context.Context, role *model.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *roleRepo) GetByID(ctx context.Context, id uint64) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).
		Where("role_id = ?", id).
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) BindDepts(ctx context.Context, roleID uint64, deptIDs []uint64) error {
	if len(deptIDs) == 0 {
		return nil
	}
	links := make([]model.RoleDept, 0, len(deptIDs))
	for _, id := range deptIDs {
		links = append(links, model.RoleDept{RoleID: roleID, DeptID: id})
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *roleRepo) ListDeptIDs(ctx context.Context, roleID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&model.RoleDept{}).
		Where("role_id = ?", roleID).
		Order("dept_id ASC").
		Pluck("dept_id", &ids).Error
	return ids, err
}

func (r *roleRepo) DeleteDeptLinks(ctx context.Context, deptID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("dept_id = ?", deptID).
		Delete(&model.RoleDept{})
	return result.RowsAffected, result.Error
}
