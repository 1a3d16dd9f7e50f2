package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"org-admin/backend/internal/model"
)

// OperRecorder 操作日志写入方，由 service.OperLogService 实现
type OperRecorder interface {
	Record(ctx context.Context, log *model.OperLog)
}

// OperLog 操作日志中间件
// 在路由上显式声明：title 为模块名，businessType 取 model.BusinessType*
// 请求结束后记录操作人、耗时与结果；HTTP 状态 >= 400 视为失败
func OperLog(recorder OperRecorder, title string, businessType int) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log := &model.OperLog{
			Title:         title,
			BusinessType:  businessType,
			Method:        c.HandlerName(),
			RequestMethod: c.Request.Method,
			OperURL:       c.Request.URL.Path,
			OperIP:        c.ClientIP(),
			RequestID:     GetRequestID(c),
			HTTPStatus:    c.Writer.Status(),
			Status:        model.OperStatusSuccess,
			CostMS:        time.Since(start).Milliseconds(),
		}
		if uid, ok := c.Get("user_id"); ok {
			log.OperatorID, _ = uid.(uint64)
		}
		if log.HTTPStatus >= 400 {
			log.Status = model.OperStatusFail
			if last := c.Errors.Last(); last != nil {
				log.ErrorMsg = last.Error()
			}
		}

		// 请求上下文可能已随连接关闭而取消，日志写入使用独立上下文
		recorder.Record(context.WithoutCancel(c.Request.Context()), log)
	}
}
