package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"org-admin/backend/internal/dto"
	"org-admin/backend/internal/model"
	"org-admin/backend/internal/repository"
	pkgerrors "org-admin/backend/pkg/errors"
	"org-admin/backend/pkg/kv"
)

// ── 部门模块业务错误 ──
// 携带部门名称的错误以 "部门「名称」" 为前缀包装，调用方用 errors.Is 判断类型

var (
	ErrDepartmentNotFound           = errors.New("部门不存在")
	ErrParentDepartmentNotFound     = errors.New("上级部门不存在")
	ErrDepartmentNameEmpty          = errors.New("部门名称不能为空")
	ErrDepartmentNameExists         = errors.New("名称已被同级部门使用")
	ErrDepartmentProtected          = errors.New("为系统内置部门，不允许停用、移动或删除")
	ErrDepartmentHasEnabledChildren = errors.New("存在启用的下级部门，不允许停用")
	ErrDepartmentDisabledAncestor   = errors.New("的上级部门已停用，不允许启用")
	ErrDepartmentSelfParent         = errors.New("的上级部门不能是自身")
	ErrDepartmentMoveIntoSubtree    = errors.New("的上级部门不能是其下级部门")
	ErrDepartmentHasChildren        = errors.New("存在下级部门，不允许删除")
	ErrDepartmentHasUsers           = errors.New("下存在用户，不允许删除")
)

func deptError(name string, err error) error {
	return fmt.Errorf("部门「%s」%w", name, err)
}

const (
	deptCachePrefix  = "dept:"
	deptTreeCacheKey = deptCachePrefix + "tree:all"
	// deptTreeGenKey 部门树缓存代号，不在 deptCachePrefix 下，失效时改写而非删除
	deptTreeGenKey = "dept_tree_gen"
)

// treeCacheKey 按缓存代号拼接部门树缓存键
// 写操作提交后更换代号，读路径以加载前读到的代号写回，旧代号的写入不会再被读取
func treeCacheKey(gen string) string {
	return deptTreeCacheKey + ":" + gen
}

// DepartmentService 部门业务接口
type DepartmentService interface {
	Create(ctx context.Context, req *dto.CreateDepartmentRequest, operatorID uint64) (*dto.DepartmentResponse, error)
	GetByID(ctx context.Context, id uint64) (*dto.DepartmentResponse, error)
	// Update 更新部门属性；ParentID 变化时移动部门并级联改写全部后代的祖级列表
	Update(ctx context.Context, id uint64, req *dto.UpdateDepartmentRequest, operatorID uint64) (*dto.DepartmentResponse, error)
	Delete(ctx context.Context, id uint64, operatorID uint64) error
	Tree(ctx context.Context, query *dto.DepartmentQuery) ([]*dto.DepartmentTreeNode, error)
	Options(ctx context.Context) ([]*dto.DepartmentOption, error)
	Descendants(ctx context.Context, id uint64) ([]dto.DepartmentResponse, error)
}

type departmentService struct {
	repo     *repository.Repository
	cache    kv.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(repo *repository.Repository, cache kv.Store, cacheTTL time.Duration, logger *zap.Logger) DepartmentService {
	return &departmentService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest, operatorID uint64) (*dto.DepartmentResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrDepartmentNameEmpty
	}

	status := model.DeptStatusEnabled
	if req.Status != nil {
		status = *req.Status
	}

	ancestors := model.RootAncestors
	if req.ParentID != model.RootParentID {
		parent, err := s.getDepartment(ctx, req.ParentID, ErrParentDepartmentNotFound)
		if err != nil {
			return nil, err
		}
		if status == model.DeptStatusEnabled {
			if err := s.checkAncestorsEnabled(ctx, parent.ChildAncestors(), name); err != nil {
				return nil, err
			}
		}
		ancestors = parent.ChildAncestors()
	}

	if err := s.checkSiblingName(ctx, req.ParentID, name, 0); err != nil {
		return nil, err
	}

	dept := &model.Department{
		ParentID:    req.ParentID,
		Ancestors:   ancestors,
		Name:        name,
		Sort:        req.Sort,
		Status:      status,
		IsSystem:    false,
		Description: req.Description,
	}
	dept.Version = 1
	dept.CreatedBy = &operatorID
	dept.UpdatedBy = &operatorID

	if err := s.repo.Department.Create(ctx, dept); err != nil {
		s.logger.Error("创建部门失败", zap.String("name", name), zap.Uint64("parent_id", req.ParentID), zap.Error(err))
		return nil, err
	}

	s.invalidateCache(ctx, "create")
	return toDepartmentResponse(dept), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *departmentService) GetByID(ctx context.Context, id uint64) (*dto.DepartmentResponse, error) {
	dept, err := s.getDepartment(ctx, id, ErrDepartmentNotFound)
	if err != nil {
		return nil, err
	}
	return toDepartmentResponse(dept), nil
}

// ═══════════════════════════════════════════════════════════
// Update 更新部门 / 移动部门
// ═══════════════════════════════════════════════════════════
//
// 校验全部在写入前完成：
//   - 同级名称唯一（以目标父级为准，排除自身）
//   - 系统内置部门不允许停用或移动
//   - 移动：不能以自身或自身后代为上级
//   - 停用：后代中不能存在启用部门
//   - 启用（或启用状态下移动）：目标祖级链上不能存在停用部门
//
// 写入在同一事务中完成：部门自身与每个后代的更新均以校验时读取的 version 为条件，
// 任一行版本不匹配即整体回滚并返回 ErrOptimisticLock。

func (s *departmentService) Update(ctx context.Context, id uint64, req *dto.UpdateDepartmentRequest, operatorID uint64) (*dto.DepartmentResponse, error) {
	dept, err := s.getDepartment(ctx, id, ErrDepartmentNotFound)
	if err != nil {
		return nil, err
	}

	target := *dept
	if req.Name != nil {
		target.Name = strings.TrimSpace(*req.Name)
		if target.Name == "" {
			return nil, ErrDepartmentNameEmpty
		}
	}
	if req.Description != nil {
		target.Description = *req.Description
	}
	if req.Sort != nil {
		target.Sort = *req.Sort
	}
	if req.Status != nil {
		target.Status = *req.Status
	}
	if req.ParentID != nil {
		target.ParentID = *req.ParentID
	}

	moving := target.ParentID != dept.ParentID
	disabling := dept.Enabled() && !target.Enabled()
	enabling := !dept.Enabled() && target.Enabled()

	if dept.IsSystem && (disabling || moving) {
		return nil, deptError(dept.Name, ErrDepartmentProtected)
	}

	// ── 移动校验 ──
	if moving {
		if target.ParentID == dept.DeptID {
			return nil, deptError(dept.Name, ErrDepartmentSelfParent)
		}
		target.Ancestors = model.RootAncestors
		if target.ParentID != model.RootParentID {
			parent, err := s.getDepartment(ctx, target.ParentID, ErrParentDepartmentNotFound)
			if err != nil {
				return nil, err
			}
			for _, ancestorID := range parent.AncestorIDs() {
				if ancestorID == dept.DeptID {
					return nil, deptError(dept.Name, ErrDepartmentMoveIntoSubtree)
				}
			}
			target.Ancestors = parent.ChildAncestors()
		}
	}

	if err := s.checkSiblingName(ctx, target.ParentID, target.Name, dept.DeptID); err != nil {
		return nil, err
	}

	// ── 状态校验 ──
	var descendants []model.Department
	if disabling || moving {
		descendants, err = s.repo.Department.ListDescendants(ctx, dept.DeptID)
		if err != nil {
			s.logger.Error("查询下级部门失败", zap.Uint64("id", id), zap.Error(err))
			return nil, err
		}
	}
	if disabling {
		for i := range descendants {
			if descendants[i].Enabled() {
				return nil, deptError(dept.Name, ErrDepartmentHasEnabledChildren)
			}
		}
	}
	if target.Enabled() && (enabling || moving) {
		if err := s.checkAncestorsEnabled(ctx, target.Ancestors, target.Name); err != nil {
			return nil, err
		}
	}

	target.UpdatedBy = &operatorID

	// ── 事务写入 ──
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			rollback(tx)
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Department.Update(ctx, &target); err != nil {
		rollback(tx)
		return nil, s.writeFailed("department_update", id, err)
	}

	if moving {
		if err := s.cascadeAncestors(ctx, txRepo, dept, &target, descendants); err != nil {
			rollback(tx)
			return nil, s.writeFailed("department_move", id, err)
		}
		deptMoveCascadeRows.Observe(float64(len(descendants)))
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Uint64("id", id), zap.Error(err))
			return nil, err
		}
	}

	s.invalidateCache(ctx, "update")
	return toDepartmentResponse(&target), nil
}

// cascadeAncestors 将后代祖级列表中的旧前缀替换为新前缀（仅替换首次出现）
// 改写完成后再次统计后代数量，若有并发插入到旧路径下的新部门则判定冲突
func (s *departmentService) cascadeAncestors(
	ctx context.Context,
	txRepo *repository.Repository,
	from, to *model.Department,
	descendants []model.Department,
) error {
	oldPrefix := from.ChildAncestors()
	newPrefix := to.ChildAncestors()

	for i := range descendants {
		d := &descendants[i]
		rewritten := strings.Replace(d.Ancestors, oldPrefix, newPrefix, 1)
		if err := txRepo.Department.UpdateAncestors(ctx, d.DeptID, d.Version, rewritten, to.UpdatedBy); err != nil {
			return err
		}
	}

	current, err := txRepo.Department.ListDescendants(ctx, from.DeptID)
	if err != nil {
		return err
	}
	if len(current) != len(descendants) {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *departmentService) Delete(ctx context.Context, id uint64, operatorID uint64) error {
	dept, err := s.getDepartment(ctx, id, ErrDepartmentNotFound)
	if err != nil {
		return err
	}

	if dept.IsSystem {
		return deptError(dept.Name, ErrDepartmentProtected)
	}

	children, err := s.repo.Department.CountChildren(ctx, id)
	if err != nil {
		s.logger.Error("查询下级部门数失败", zap.Uint64("id", id), zap.Error(err))
		return err
	}
	if children > 0 {
		return deptError(dept.Name, ErrDepartmentHasChildren)
	}

	users, err := s.repo.User.CountByDept(ctx, id)
	if err != nil {
		s.logger.Error("查询部门用户数失败", zap.Uint64("id", id), zap.Error(err))
		return err
	}
	if users > 0 {
		return deptError(dept.Name, ErrDepartmentHasUsers)
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		removed, err := txRepo.Role.DeleteDeptLinks(ctx, id)
		if err != nil {
			return err
		}
		if removed > 0 {
			s.logger.Info("已移除部门的角色数据范围关联", zap.Uint64("id", id), zap.Int64("count", removed))
		}
		return txRepo.Department.Delete(ctx, id, &operatorID)
	})
	if err != nil {
		s.logger.Error("删除部门失败", zap.Uint64("id", id), zap.Error(err))
		return err
	}

	s.invalidateCache(ctx, "delete")
	return nil
}

// ────────────────────── Tree ──────────────────────

func (s *departmentService) Tree(ctx context.Context, query *dto.DepartmentQuery) ([]*dto.DepartmentTreeNode, error) {
	filter := repository.DepartmentFilter{}
	if query != nil {
		filter.Keyword = strings.TrimSpace(query.Description)
		filter.Status = query.Status
	}
	cacheable := filter.Keyword == "" && filter.Status == nil

	var cacheKey string
	if cacheable {
		cacheKey, cacheable = s.treeKey(ctx)
	}
	if cacheable {
		if tree, ok := s.cachedTree(ctx, cacheKey); ok {
			return tree, nil
		}
	}

	depts, err := s.repo.Department.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询部门列表失败", zap.Error(err))
		return nil, err
	}
	tree := BuildDepartmentTree(depts)

	if cacheable {
		s.storeTree(ctx, cacheKey, tree)
	}
	return tree, nil
}

// BuildDepartmentTree 将按 (sort, id) 排序的部门列表组装为森林
// 顶级部门及父级不在结果集中的部门成为根；叶子节点的 Children 为空数组
func BuildDepartmentTree(depts []model.Department) []*dto.DepartmentTreeNode {
	nodes := make(map[uint64]*dto.DepartmentTreeNode, len(depts))
	for i := range depts {
		nodes[depts[i].DeptID] = &dto.DepartmentTreeNode{
			DepartmentResponse: *toDepartmentResponse(&depts[i]),
			Children:           []*dto.DepartmentTreeNode{},
		}
	}

	roots := make([]*dto.DepartmentTreeNode, 0)
	for i := range depts {
		node := nodes[depts[i].DeptID]
		parent, ok := nodes[depts[i].ParentID]
		if depts[i].IsRoot() || !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots
}

// ────────────────────── Options ──────────────────────

func (s *departmentService) Options(ctx context.Context) ([]*dto.DepartmentOption, error) {
	enabled := model.DeptStatusEnabled
	depts, err := s.repo.Department.List(ctx, repository.DepartmentFilter{Status: &enabled})
	if err != nil {
		s.logger.Error("查询部门选项失败", zap.Error(err))
		return nil, err
	}
	return toDepartmentOptions(BuildDepartmentTree(depts)), nil
}

func toDepartmentOptions(nodes []*dto.DepartmentTreeNode) []*dto.DepartmentOption {
	options := make([]*dto.DepartmentOption, 0, len(nodes))
	for _, n := range nodes {
		opt := &dto.DepartmentOption{Value: n.ID, Label: n.Name}
		if len(n.Children) > 0 {
			opt.Children = toDepartmentOptions(n.Children)
		}
		options = append(options, opt)
	}
	return options
}

// ────────────────────── Descendants ──────────────────────

func (s *departmentService) Descendants(ctx context.Context, id uint64) ([]dto.DepartmentResponse, error) {
	if _, err := s.getDepartment(ctx, id, ErrDepartmentNotFound); err != nil {
		return nil, err
	}

	depts, err := s.repo.Department.ListDescendants(ctx, id)
	if err != nil {
		s.logger.Error("查询下级部门失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}

	result := make([]dto.DepartmentResponse, 0, len(depts))
	for i := range depts {
		result = append(result, *toDepartmentResponse(&depts[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

// getDepartment 查询部门，记录不存在时返回 notFound
func (s *departmentService) getDepartment(ctx context.Context, id uint64, notFound error) (*model.Department, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		s.logger.Error("查询部门失败", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return dept, nil
}

func (s *departmentService) checkSiblingName(ctx context.Context, parentID uint64, name string, excludeID uint64) error {
	exists, err := s.repo.Department.ExistsSiblingName(ctx, parentID, name, excludeID)
	if err != nil {
		s.logger.Error("校验部门名称失败", zap.String("name", name), zap.Error(err))
		return err
	}
	if exists {
		return deptError(name, ErrDepartmentNameExists)
	}
	return nil
}

// checkAncestorsEnabled 校验祖级链上的全部部门均为启用状态
func (s *departmentService) checkAncestorsEnabled(ctx context.Context, ancestors, name string) error {
	ids := model.ParseAncestors(ancestors)
	if len(ids) == 0 {
		return nil
	}
	chain, err := s.repo.Department.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询祖级部门失败", zap.String("ancestors", ancestors), zap.Error(err))
		return err
	}
	for i := range chain {
		if !chain[i].Enabled() {
			return deptError(name, ErrDepartmentDisabledAncestor)
		}
	}
	return nil
}

func (s *departmentService) writeFailed(op string, id uint64, err error) error {
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		recordWriteConflict(op)
		s.logger.Warn("部门写入冲突", zap.String("op", op), zap.Uint64("id", id))
		return err
	}
	s.logger.Error("更新部门失败", zap.String("op", op), zap.Uint64("id", id), zap.Error(err))
	return err
}

// treeKey 读取当前缓存代号并返回部门树缓存键
// 必须在查询数据库之前调用；代号读取失败时本次不走缓存
func (s *departmentService) treeKey(ctx context.Context) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	gen, err := s.cache.Get(ctx, deptTreeGenKey)
	if err != nil && !errors.Is(err, kv.ErrCacheMiss) {
		s.logger.Warn("读取部门树缓存代号失败", zap.Error(err))
		return "", false
	}
	return treeCacheKey(gen), true
}

func (s *departmentService) cachedTree(ctx context.Context, key string) ([]*dto.DepartmentTreeNode, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrCacheMiss) {
			s.logger.Warn("读取部门树缓存失败", zap.Error(err))
		}
		recordCacheRequest(false)
		return nil, false
	}
	var tree []*dto.DepartmentTreeNode
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		s.logger.Warn("部门树缓存内容无效", zap.Error(err))
		recordCacheRequest(false)
		return nil, false
	}
	recordCacheRequest(true)
	return tree, true
}

func (s *departmentService) storeTree(ctx context.Context, key string, tree []*dto.DepartmentTreeNode) {
	raw, err := json.Marshal(tree)
	if err != nil {
		s.logger.Warn("序列化部门树失败", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
		s.logger.Warn("写入部门树缓存失败", zap.Error(err))
	}
}

func (s *departmentService) invalidateCache(ctx context.Context, reason string) {
	if s.cache == nil {
		return
	}
	recordCacheInvalidate(reason)
	// 先更换代号：并发读在此之前加载的旧数据只会写入旧代号的键
	if err := s.cache.Set(ctx, deptTreeGenKey, uuid.NewString(), 0); err != nil {
		s.logger.Warn("更新部门树缓存代号失败", zap.String("reason", reason), zap.Error(err))
	}
	if err := s.cache.DeleteByPrefix(ctx, deptCachePrefix); err != nil {
		s.logger.Warn("清除部门缓存失败", zap.String("reason", reason), zap.Error(err))
	}
}

func rollback(tx *gorm.DB) {
	if tx != nil {
		tx.Rollback()
	}
}

func toDepartmentResponse(dept *model.Department) *dto.DepartmentResponse {
	return &dto.DepartmentResponse{
		ID:          dept.DeptID,
		ParentID:    dept.ParentID,
		Ancestors:   dept.Ancestors,
		Name:        dept.Name,
		Sort:        dept.Sort,
		Status:      dept.Status,
		IsSystem:    dept.IsSystem,
		Description: dept.Description,
		Version:     dept.Version,
		CreatedAt:   dept.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   dept.UpdatedAt.Format(time.RFC3339),
	}
}
