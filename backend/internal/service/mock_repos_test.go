package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"org-admin/backend/internal/model"
	"org-admin/backend/internal/repository"
	pkgerrors "org-admin/backend/pkg/errors"
)

var errMockStorage = errors.New("mock storage failure")

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	departments map[uint64]*model.Department
	nextID      uint64
	updates     int // 成功写入次数（Update + UpdateAncestors）

	// 非零时改写该部门祖级列表返回 failAncestorsErr
	failAncestorsOf  uint64
	failAncestorsErr error
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{departments: make(map[uint64]*model.Department), nextID: 1}
}

// seed 直接写入部门，parent 为 nil 时为顶级部门
func (m *mockDeptRepo) seed(name string, parent *model.Department, status int8) *model.Department {
	dept := &model.Department{
		DeptID:    m.nextID,
		ParentID:  model.RootParentID,
		Ancestors: model.RootAncestors,
		Name:      name,
		Status:    status,
	}
	dept.Version = 1
	if parent != nil {
		dept.ParentID = parent.DeptID
		dept.Ancestors = parent.ChildAncestors()
	}
	m.nextID++
	m.departments[dept.DeptID] = dept
	return dept
}

func (m *mockDeptRepo) sorted(match func(d *model.Department) bool) []model.Department {
	result := make([]model.Department, 0)
	for _, d := range m.departments {
		if match(d) {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Sort != result[j].Sort {
			return result[i].Sort < result[j].Sort
		}
		return result[i].DeptID < result[j].DeptID
	})
	return result
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	dept.DeptID = m.nextID
	m.nextID++
	dept.CreatedAt = time.Now()
	dept.UpdatedAt = dept.CreatedAt
	c := *dept
	m.departments[dept.DeptID] = &c
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id uint64) (*model.Department, error) {
	if d, ok := m.departments[id]; ok {
		c := *d
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) ListByIDs(_ context.Context, ids []uint64) ([]model.Department, error) {
	want := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.sorted(func(d *model.Department) bool { return want[d.DeptID] }), nil
}

func (m *mockDeptRepo) List(_ context.Context, filter repository.DepartmentFilter) ([]model.Department, error) {
	return m.sorted(func(d *model.Department) bool {
		if filter.Keyword != "" &&
			!strings.Contains(d.Name, filter.Keyword) &&
			!strings.Contains(d.Description, filter.Keyword) {
			return false
		}
		return filter.Status == nil || d.Status == *filter.Status
	}), nil
}

func (m *mockDeptRepo) ListDescendants(_ context.Context, id uint64) ([]model.Department, error) {
	s := strconv.FormatUint(id, 10)
	return m.sorted(func(d *model.Department) bool {
		if d.DeptID == id {
			return false
		}
		a := d.Ancestors
		return a == s || strings.Contains(a, ","+s+",") || strings.HasSuffix(a, ","+s) || strings.HasPrefix(a, s+",")
	}), nil
}

func (m *mockDeptRepo) ExistsSiblingName(_ context.Context, parentID uint64, name string, excludeID uint64) (bool, error) {
	for _, d := range m.departments {
		if d.ParentID == parentID && d.Name == name && d.DeptID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDeptRepo) CountChildren(_ context.Context, id uint64) (int64, error) {
	var count int64
	for _, d := range m.departments {
		if d.ParentID == id {
			count++
		}
	}
	return count, nil
}

func (m *mockDeptRepo) Update(_ context.Context, dept *model.Department) error {
	cur, ok := m.departments[dept.DeptID]
	if !ok || cur.Version != dept.Version {
		return pkgerrors.ErrOptimisticLock
	}
	dept.Version++
	dept.UpdatedAt = time.Now()
	c := *dept
	m.departments[dept.DeptID] = &c
	m.updates++
	return nil
}

func (m *mockDeptRepo) UpdateAncestors(_ context.Context, id uint64, version int, ancestors string, updatedBy *uint64) error {
	if id == m.failAncestorsOf {
		return m.failAncestorsErr
	}
	cur, ok := m.departments[id]
	if !ok || cur.Version != version {
		return pkgerrors.ErrOptimisticLock
	}
	cur.Ancestors = ancestors
	cur.UpdatedBy = updatedBy
	cur.Version++
	m.updates++
	return nil
}

func (m *mockDeptRepo) Delete(_ context.Context, id uint64, _ *uint64) error {
	delete(m.departments, id)
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[uint64]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uint64]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == 0 {
		user.UserID = uint64(len(m.users) + 1)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint64) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) CountByDept(_ context.Context, deptID uint64) (int64, error) {
	var count int64
	for _, u := range m.users {
		if u.DeptID == deptID {
			count++
		}
	}
	return count, nil
}

// ── Mock RoleRepository ──

type mockRoleRepo struct {
	roles map[uint64]*model.Role
	links map[uint64][]uint64 // role_id → dept_ids
}

func newMockRoleRepo() *mockRoleRepo {
	return &mockRoleRepo{
		roles: make(map[uint64]*model.Role),
		links: make(map[uint64][]uint64),
	}
}

func (m *mockRoleRepo) Create(_ context.Context, role *model.Role) error {
	if role.RoleID == 0 {
		role.RoleID = uint64(len(m.roles) + 1)
	}
	m.roles[role.RoleID] = role
	return nil
}

func (m *mockRoleRepo) GetByID(_ context.Context, id uint64) (*model.Role, error) {
	if r, ok := m.roles[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoleRepo) BindDepts(_ context.Context, roleID uint64, deptIDs []uint64) error {
	m.links[roleID] = append(m.links[roleID], deptIDs...)
	return nil
}

func (m *mockRoleRepo) ListDeptIDs(_ context.Context, roleID uint64) ([]uint64, error) {
	ids := append([]uint64(nil), m.links[roleID]...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *mockRoleRepo) DeleteDeptLinks(_ context.Context, deptID uint64) (int64, error) {
	var removed int64
	for roleID, ids := range m.links {
		kept := ids[:0]
		for _, id := range ids {
			if id == deptID {
				removed++
				continue
			}
			kept = append(kept, id)
		}
		m.links[roleID] = kept
	}
	return removed, nil
}

// ── Mock OperLogRepository ──

type mockOperLogRepo struct {
	logs []model.OperLog
	err  error
}

func (m *mockOperLogRepo) Create(_ context.Context, log *model.OperLog) error {
	if m.err != nil {
		return m.err
	}
	log.OperID = uint64(len(m.logs) + 1)
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockOperLogRepo) List(_ context.Context, filter repository.OperLogFilter, offset, limit int) ([]model.OperLog, int64, error) {
	var matched []model.OperLog
	for _, l := range m.logs {
		if filter.Title != "" && !strings.Contains(l.Title, filter.Title) {
			continue
		}
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		matched = append(matched, l)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return []model.OperLog{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// ── 测试聚合 ──

type mockRepos struct {
	dept    *mockDeptRepo
	user    *mockUserRepo
	role    *mockRoleRepo
	operLog *mockOperLogRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		dept:    newMockDeptRepo(),
		user:    newMockUserRepo(),
		role:    newMockRoleRepo(),
		operLog: &mockOperLogRepo{},
	}
	return &repository.Repository{
		Department: m.dept,
		User:       m.user,
		Role:       m.role,
		OperLog:    m.operLog,
	}, m
}
