package repository

import (
	"context"

	"gorm.io/gorm"

	"org-admin/backend/internal/model"
)

// OperLogFilter 操作日志查询条件
type OperLogFilter struct {
	Title        string
	BusinessType *int
	Status       *int8
	OperatorID   uint64
}

// OperLogRepository 操作日志数据访问接口
type OperLogRepository interface {
	Create(ctx context.Context, log *model.OperLog) error
	List(ctx context.Context, filter OperLogFilter, offset, limit int) ([]model.OperLog, int64, error)
}

type operLogRepo struct {
	db *gorm.DB
}

// NewOperLogRepo 创建 OperLogRepository 实例
func NewOperLogRepo(db *gorm.DB) OperLogRepository {
	return &operLogRepo{db: db}
}

func (r *operLogRepo) Create(ctx context.Context, log *model.OperLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *operLogRepo) List(ctx context.Context, filter OperLogFilter, offset, limit int) ([]model.OperLog, int64, error) {
	var logs []model.OperLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.OperLog{})
	if filter.Title != "" {
		db = db.Where("title LIKE ?", "%"+filter.Title+"%")
	}
	if filter.BusinessType != nil {
		db = db.Where("business_type = ?", *filter.BusinessType)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.OperatorID != 0 {
		db = db.Where("operator_id = ?", filter.OperatorID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("oper_time DESC, oper_id DESC").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error
	return logs, total, err
}
