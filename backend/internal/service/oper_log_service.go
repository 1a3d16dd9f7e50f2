package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"org-admin/backend/internal/dto"
	"org-admin/backend/internal/model"
	"org-admin/backend/internal/repository"
)

// maxOperErrorLen 与 sys_oper_log.error_msg 列长度一致
const maxOperErrorLen = 2000

// OperLogService 操作日志业务接口
type OperLogService interface {
	// Record 写入一条操作日志；失败仅记录日志，不影响业务请求
	Record(ctx context.Context, log *model.OperLog)
	List(ctx context.Context, req *dto.OperLogListRequest) ([]dto.OperLogResponse, int64, error)
}

type operLogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewOperLogService 创建 OperLogService 实例
func NewOperLogService(repo *repository.Repository, logger *zap.Logger) OperLogService {
	return &operLogService{repo: repo, logger: logger}
}

func (s *operLogService) Record(ctx context.Context, log *model.OperLog) {
	if log.OperTime.IsZero() {
		log.OperTime = time.Now()
	}
	if msg := []rune(log.ErrorMsg); len(msg) > maxOperErrorLen {
		log.ErrorMsg = string(msg[:maxOperErrorLen])
	}
	if err := s.repo.OperLog.Create(ctx, log); err != nil {
		s.logger.Error("写入操作日志失败",
			zap.String("title", log.Title),
			zap.String("url", log.OperURL),
			zap.Error(err),
		)
	}
}

func (s *operLogService) List(ctx context.Context, req *dto.OperLogListRequest) ([]dto.OperLogResponse, int64, error) {
	page, pageSize := req.Page, req.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	filter := repository.OperLogFilter{
		Title:        req.Title,
		BusinessType: req.BusinessType,
		Status:       req.Status,
		OperatorID:   req.OperatorID,
	}
	logs, total, err := s.repo.OperLog.List(ctx, filter, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("查询操作日志失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.OperLogResponse, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		result = append(result, dto.OperLogResponse{
			ID:            l.OperID,
			Title:         l.Title,
			BusinessType:  l.BusinessType,
			Method:        l.Method,
			RequestMethod: l.RequestMethod,
			OperURL:       l.OperURL,
			OperIP:        l.OperIP,
			OperatorID:    l.OperatorID,
			RequestID:     l.RequestID,
			Status:        l.Status,
			HTTPStatus:    l.HTTPStatus,
			ErrorMsg:      l.ErrorMsg,
			CostMS:        l.CostMS,
			OperTime:      l.OperTime.Format(time.RFC3339),
		})
	}
	return result, total, nil
}
