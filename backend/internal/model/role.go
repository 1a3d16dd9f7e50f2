package model

// 角色数据范围
const (
	DataScopeAll    = "1" // 全部数据
	DataScopeCustom = "2" // 自定义部门
	DataScopeDept   = "3" // 本部门
	DataScopeBelow  = "4" // 本部门及以下
	DataScopeSelf   = "5" // 仅本人
)

// Role 角色表，对应 sys_role
type Role struct {
	RoleID    uint64 `gorm:"column:role_id;primaryKey;autoIncrement" json:"role_id"`
	RoleName  string `gorm:"type:varchar(30);not null"             json:"role_name"`
	RoleKey   string `gorm:"type:varchar(100);not null"            json:"role_key"`
	DataScope string `gorm:"type:char(1);not null"                 json:"data_scope"`
	Status    int8   `gorm:"not null"                              json:"status"`
	SoftDeleteModel
}

// TableName 指定表名
func (Role) TableName() string { return "sys_role" }

// RoleDept 角色与部门关联表，对应 sys_role_dept（自定义数据范围）
type RoleDept struct {
	RoleID uint64 `gorm:"column:role_id;primaryKey" json:"role_id"`
	DeptID uint64 `gorm:"column:dept_id;primaryKey" json:"dept_id"`
}

// TableName 指定表名
func (RoleDept) TableName() string { return "sys_role_dept" }
