package model

import "time"

// 操作业务类型
const (
	BusinessTypeOther  = 0
	BusinessTypeInsert = 1
	BusinessTypeUpdate = 2
	BusinessTypeDelete = 3
	BusinessTypeExport = 5
)

// 操作状态
const (
	OperStatusSuccess int8 = 0
	OperStatusFail    int8 = 1
)

// OperLog 操作日志表，对应 sys_oper_log
type OperLog struct {
	OperID        uint64    `gorm:"column:oper_id;primaryKey;autoIncrement" json:"oper_id"`
	Title         string    `gorm:"type:varchar(50);not null"  json:"title"`
	BusinessType  int       `gorm:"not null"                   json:"business_type"`
	Method        string    `gorm:"type:varchar(200)"          json:"method"`
	RequestMethod string    `gorm:"type:varchar(10)"           json:"request_method"`
	OperURL       string    `gorm:"column:oper_url;type:varchar(255)" json:"oper_url"`
	OperIP        string    `gorm:"column:oper_ip;type:varchar(128)"  json:"oper_ip"`
	OperatorID    uint64    `gorm:"not null;index"             json:"operator_id"`
	RequestID     string    `gorm:"type:varchar(64)"           json:"request_id"`
	Status        int8      `gorm:"not null"                   json:"status"`
	HTTPStatus    int       `gorm:"column:http_status;not null" json:"http_status"`
	ErrorMsg      string    `gorm:"type:varchar(2000)"         json:"error_msg,omitempty"`
	CostMS        int64     `gorm:"column:cost_ms;not null"    json:"cost_ms"`
	OperTime      time.Time `gorm:"not null;index"             json:"oper_time"`
}

// TableName 指定表名
func (OperLog) TableName() string { return "sys_oper_log" }
