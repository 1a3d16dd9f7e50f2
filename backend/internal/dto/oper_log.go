package dto

// OperLogListRequest 操作日志分页查询
type OperLogListRequest struct {
	Page         int    `form:"page"          binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size"     binding:"omitempty,min=1,max=100"`
	Title        string `form:"title"`
	BusinessType *int   `form:"business_type" binding:"omitempty,min=0,max=9"`
	Status       *int8  `form:"status"        binding:"omitempty,oneof=0 1"`
	OperatorID   uint64 `form:"operator_id"`
}

// OperLogResponse 操作日志响应
type OperLogResponse struct {
	ID            uint64 `json:"id"`
	Title         string `json:"title"`
	BusinessType  int    `json:"business_type"`
	Method        string `json:"method"`
	RequestMethod string `json:"request_method"`
	OperURL       string `json:"oper_url"`
	OperIP        string `json:"oper_ip"`
	OperatorID    uint64 `json:"operator_id"`
	RequestID     string `json:"request_id"`
	Status        int8   `json:"status"`
	HTTPStatus    int    `json:"http_status"`
	ErrorMsg      string `json:"error_msg,omitempty"`
	CostMS        int64  `json:"cost_ms"`
	OperTime      string `json:"oper_time"`
}
