package model

import (
	"strconv"
	"strings"
)

// 部门状态
const (
	DeptStatusDisabled int8 = 0
	DeptStatusEnabled  int8 = 1
)

const (
	// RootParentID 顶级部门的 parent_id 哨兵值
	RootParentID uint64 = 0
	// RootAncestors 顶级部门的祖级列表
	RootAncestors = "0"
)

// Department 部门表，对应 sys_dept
//
// Ancestors 为物化路径：从根到直接父级的 ID 列表，逗号分隔，例如 "0,5,12"。
type Department struct {
	DeptID      uint64 `gorm:"column:dept_id;primaryKey;autoIncrement" json:"dept_id"`
	ParentID    uint64 `gorm:"column:parent_id;not null;index"          json:"parent_id"`
	Ancestors   string `gorm:"type:varchar(500);not null"               json:"ancestors"`
	Name        string `gorm:"column:dept_name;type:varchar(50);not null" json:"dept_name"`
	Sort        int    `gorm:"not null"                                 json:"sort"`
	Status      int8   `gorm:"not null"                                 json:"status"`
	IsSystem    bool   `gorm:"not null"                                 json:"is_system"`
	Description string `gorm:"type:varchar(200)"                        json:"description,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Department) TableName() string { return "sys_dept" }

// Enabled 是否为启用状态
func (d *Department) Enabled() bool { return d.Status == DeptStatusEnabled }

// IsRoot 是否为顶级部门
func (d *Department) IsRoot() bool { return d.ParentID == RootParentID }

// ChildAncestors 返回该部门的直接子部门应持有的祖级列表
func (d *Department) ChildAncestors() string {
	return d.Ancestors + "," + strconv.FormatUint(d.DeptID, 10)
}

// AncestorIDs 解析祖级列表，不含根哨兵 0
func (d *Department) AncestorIDs() []uint64 {
	return ParseAncestors(d.Ancestors)
}

// ParseAncestors 将 "0,5,12" 解析为 [5 12]，忽略根哨兵与非法片段
func ParseAncestors(ancestors string) []uint64 {
	if ancestors == "" {
		return nil
	}
	parts := strings.Split(ancestors, ",")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil || id == RootParentID {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
