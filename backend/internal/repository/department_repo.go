package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"org-admin/backend/internal/model"
	pkgerrors "org-admin/backend/pkg/errors"
)

// DepartmentFilter 部门列表查询条件
type DepartmentFilter struct {
	Keyword string // 匹配部门名称或描述
	Status  *int8
}

// DepartmentRepository 部门数据访问接口
type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	GetByID(ctx context.Context, id uint64) (*model.Department, error)
	ListByIDs(ctx context.Context, ids []uint64) ([]model.Department, error)
	List(ctx context.Context, filter DepartmentFilter) ([]model.Department, error)
	// ListDescendants 按祖级路径查询全部后代（不含自身）
	ListDescendants(ctx context.Context, id uint64) ([]model.Department, error)
	ExistsSiblingName(ctx context.Context, parentID uint64, name string, excludeID uint64) (bool, error)
	CountChildren(ctx context.Context, id uint64) (int64, error)
	Update(ctx context.Context, dept *model.Department) error
	// UpdateAncestors 改写单个后代的祖级列表，version 不匹配时返回 ErrOptimisticLock
	UpdateAncestors(ctx context.Context, id uint64, version int, ancestors string, updatedBy *uint64) error
	Delete(ctx context.Context, id uint64, deletedBy *uint64) error
}

// departmentRepo DepartmentRepository 的 GORM 实现
type departmentRepo struct {
	db *gorm.DB
}

// NewDepartmentRepo 创建 DepartmentRepository 实例
func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db: db}
}

// DescendantPatterns 返回匹配 id 作为祖级路径片段的条件参数
// 依次为：完全相等、中间片段、末尾片段、开头片段，避免 1 误匹配 12
func DescendantPatterns(id uint64) []interface{} {
	s := strconv.FormatUint(id, 10)
	return []interface{}{s, "%," + s + ",%", "%," + s, s + ",%"}
}

// likeEscaper 转义 LIKE 通配符，配合 ESCAPE '\' 使用
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike 使关键字中的 % 与 _ 按字面匹配
func EscapeLike(keyword string) string {
	return likeEscaper.Replace(keyword)
}

func descendantsOf(id uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"(ancestors = ? OR ancestors LIKE ? OR ancestors LIKE ? OR ancestors LIKE ?)",
			DescendantPatterns(id)...,
		)
	}
}

func (r *departmentRepo) Create(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *departmentRepo) GetByID(ctx context.Context, id uint64) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).
		Where("dept_id = ?", id).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) ListByIDs(ctx context.Context, ids []uint64) ([]model.Department, error) {
	var depts []model.Department
	if len(ids) == 0 {
		return depts, nil
	}
	err := r.db.WithContext(ctx).
		Where("dept_id IN ?", ids).
		Order("sort ASC, dept_id ASC").
		Find(&depts).Error
	return depts, err
}

func (r *departmentRepo) List(ctx context.Context, filter DepartmentFilter) ([]model.Department, error) {
	var depts []model.Department

	db := r.db.WithContext(ctx).Model(&model.Department{})
	if filter.Keyword != "" {
		like := "%" + EscapeLike(filter.Keyword) + "%"
		db = db.Where(`(dept_name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`, like, like)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}

	err := db.Order("sort ASC, dept_id ASC").Find(&depts).Error
	return depts, err
}

func (r *departmentRepo) ListDescendants(ctx context.Context, id uint64) ([]model.Department, error) {
	var depts []model.Department
	err := r.db.WithContext(ctx).
		Scopes(descendantsOf(id)).
		Where("dept_id <> ?", id).
		Order("sort ASC, dept_id ASC").
		Find(&depts).Error
	return depts, err
}

func (r *departmentRepo) ExistsSiblingName(ctx context.Context, parentID uint64, name string, excludeID uint64) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).
		Model(&model.Department{}).
		Where("parent_id = ? AND dept_name = ?", parentID, name)
	if excludeID != 0 {
		db = db.Where("dept_id <> ?", excludeID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *departmentRepo) CountChildren(ctx context.Context, id uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Department{}).
		Where("parent_id = ?", id).
		Count(&count).Error
	return count, err
}

func (r *departmentRepo) Update(ctx context.Context, dept *model.Department) error {
	oldVersion := dept.Version
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Department{}).
		Where("dept_id = ? AND version = ?", dept.DeptID, oldVersion).
		Updates(map[string]interface{}{
			"parent_id":   dept.ParentID,
			"ancestors":   dept.Ancestors,
			"dept_name":   dept.Name,
			"sort":        dept.Sort,
			"status":      dept.Status,
			"description": dept.Description,
			"updated_by":  dept.UpdatedBy,
			"updated_at":  now,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	dept.Version = oldVersion + 1
	dept.UpdatedAt = now
	return nil
}

func (r *departmentRepo) UpdateAncestors(ctx context.Context, id uint64, version int, ancestors string, updatedBy *uint64) error {
	result := r.db.WithContext(ctx).
		Model(&model.Department{}).
		Where("dept_id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"ancestors":  ancestors,
			"updated_by": updatedBy,
			"version":    version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *departmentRepo) Delete(ctx context.Context, id uint64, deletedBy *uint64) error {
	return r.db.WithContext(ctx).
		Model(&model.Department{}).
		Where("dept_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": time.Now(),
		}).Error
}
