package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"org-admin/backend/internal/model"
	"org-admin/backend/internal/repository"
)

// newSQLiteDB 创建内存 SQLite 数据库并迁移表结构
// 单连接：内存库按连接隔离，事务内只能使用事务 Repository
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Department{},
		&model.User{},
		&model.Role{},
		&model.RoleDept{},
		&model.OperLog{},
	))
	return db
}

// seedDept 在 parent 下创建启用状态的部门，parent 为 nil 时创建顶级部门
func seedDept(t *testing.T, repo *repository.Repository, name string, parent *model.Department) *model.Department {
	t.Helper()

	dept := &model.Department{
		ParentID:  model.RootParentID,
		Ancestors: model.RootAncestors,
		Name:      name,
		Status:    model.DeptStatusEnabled,
	}
	dept.Version = 1
	if parent != nil {
		dept.ParentID = parent.DeptID
		dept.Ancestors = parent.ChildAncestors()
	}
	require.NoError(t, repo.Department.Create(context.Background(), dept))
	return dept
}
