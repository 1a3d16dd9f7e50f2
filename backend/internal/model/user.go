package model

// User 用户表，对应 sys_user
// 部门模块只关心用户对部门的引用
type User struct {
	UserID   uint64 `gorm:"column:user_id;primaryKey;autoIncrement" json:"user_id"`
	Username string `gorm:"type:varchar(30);not null"             json:"username"`
	Nickname string `gorm:"type:varchar(30)"                      json:"nickname"`
	DeptID   uint64 `gorm:"column:dept_id;not null;index"         json:"dept_id"`
	Status   int8   `gorm:"not null"                              json:"status"`
	SoftDeleteModel

	// 关联
	Department *Department `gorm:"foreignKey:DeptID;references:DeptID" json:"department,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "sys_user" }
