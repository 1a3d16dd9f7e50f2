package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"org-admin/backend/config"
	"org-admin/backend/internal/api/handler"
	"org-admin/backend/internal/api/middleware"
	"org-admin/backend/internal/model"
	"org-admin/backend/pkg/jwt"
)

// 权限标识
const (
	PermDeptList    = "system:dept:list"
	PermDeptAdd     = "system:dept:add"
	PermDeptUpdate  = "system:dept:update"
	PermDeptDelete  = "system:dept:delete"
	PermDeptExport  = "system:dept:export"
	PermRoleList    = "system:role:list"
	PermOperLogList = "monitor:operlog:list"
)

const deptLogTitle = "部门管理"

// Deps 路由依赖
// Limiter 为 nil 时写接口不限流
type Deps struct {
	Handler  *handler.Handler
	Recorder middleware.OperRecorder
	JWT      *jwt.Manager
	Limiter  middleware.Limiter
	Logger   *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	h := d.Handler

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 写接口限流
	write := func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.Enabled {
		write = middleware.RateLimit(d.Limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window, d.Logger)
	}

	// ── API v1（全部需要认证）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(d.JWT))
	{
		// 部门模块
		departments := v1.Group("/departments")
		{
			departments.GET("/tree", middleware.PermAuth(PermDeptList), h.Department.GetTree)
			departments.GET("/options", h.Department.GetOptions)
			departments.GET("/export",
				middleware.PermAuth(PermDeptExport),
				middleware.OperLog(d.Recorder, deptLogTitle, model.BusinessTypeExport),
				h.Export.ExportDepartments)
			departments.GET("/:id", middleware.PermAuth(PermDeptList), h.Department.GetDepartment)
			departments.GET("/:id/descendants", middleware.PermAuth(PermDeptList), h.Department.ListDescendants)
			departments.POST("",
				middleware.PermAuth(PermDeptAdd), write,
				middleware.OperLog(d.Recorder, deptLogTitle, model.BusinessTypeInsert),
				h.Department.CreateDepartment)
			departments.PUT("/:id",
				middleware.PermAuth(PermDeptUpdate), write,
				middleware.OperLog(d.Recorder, deptLogTitle, model.BusinessTypeUpdate),
				h.Department.UpdateDepartment)
			departments.DELETE("/:id",
				middleware.PermAuth(PermDeptDelete), write,
				middleware.OperLog(d.Recorder, deptLogTitle, model.BusinessTypeDelete),
				h.Department.DeleteDepartment)
		}

		// 角色数据范围
		v1.GET("/roles/:id/departments", middleware.PermAuth(PermRoleList), h.Role.ListDepartments)

		// 操作日志
		v1.GET("/oper-logs", middleware.PermAuth(PermOperLogList), h.OperLog.ListOperLogs)
	}

	return r
}
