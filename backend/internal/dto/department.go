package dto

// ── 部门模块 DTO ──

// CreateDepartmentRequest 创建部门请求
type CreateDepartmentRequest struct {
	ParentID    uint64 `json:"parent_id"`
	Name        string `json:"name"        binding:"required,max=50"`
	Description string `json:"description" binding:"omitempty,max=200"`
	Sort        int    `json:"sort"        binding:"gte=0"`
	Status      *int8  `json:"status"      binding:"omitempty,oneof=0 1"`
}

// UpdateDepartmentRequest 更新部门请求
// 字段为 nil 表示不修改；ParentID 非 nil 且与当前不同即为移动
type UpdateDepartmentRequest struct {
	ParentID    *uint64 `json:"parent_id"`
	Name        *string `json:"name"        binding:"omitempty,min=1,max=50"`
	Description *string `json:"description" binding:"omitempty,max=200"`
	Sort        *int    `json:"sort"        binding:"omitempty,gte=0"`
	Status      *int8   `json:"status"      binding:"omitempty,oneof=0 1"`
}

// DepartmentQuery 部门树/导出查询参数
// Description 同时匹配名称与描述（子串）；Status 精确匹配
type DepartmentQuery struct {
	Description string `form:"description"`
	Status      *int8  `form:"status" binding:"omitempty,oneof=0 1"`
}

// DepartmentResponse 部门信息响应
type DepartmentResponse struct {
	ID          uint64 `json:"id"`
	ParentID    uint64 `json:"parent_id"`
	Ancestors   string `json:"ancestors"`
	Name        string `json:"name"`
	Sort        int    `json:"sort"`
	Status      int8   `json:"status"`
	IsSystem    bool   `json:"is_system"`
	Description string `json:"description"`
	Version     int    `json:"version"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// DepartmentTreeNode 部门树节点，Children 对叶子节点为空数组
type DepartmentTreeNode struct {
	DepartmentResponse
	Children []*DepartmentTreeNode `json:"children"`
}

// DepartmentOption 部门下拉选项
type DepartmentOption struct {
	Value    uint64              `json:"value"`
	Label    string              `json:"label"`
	Children []*DepartmentOption `json:"children,omitempty"`
}

// RoleDepartmentsResponse 角色自定义数据范围
type RoleDepartmentsResponse struct {
	RoleID  uint64   `json:"role_id"`
	DeptIDs []uint64 `json:"dept_ids"`
}
