package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"org-admin/backend/internal/dto"
	"org-admin/backend/internal/model"
	"org-admin/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportColumn 导出列定义：字段、表头、列宽与格式化函数
type ExportColumn[T any] struct {
	Field  string
	Label  string
	Width  float64
	Format func(row *T) any
}

// DepartmentExportColumns 部门导出字段映射表，顺序即列顺序
var DepartmentExportColumns = []ExportColumn[model.Department]{
	{Field: "dept_id", Label: "部门编号", Width: 12, Format: func(d *model.Department) any { return d.DeptID }},
	{Field: "dept_name", Label: "部门名称", Width: 24, Format: func(d *model.Department) any { return d.Name }},
	{Field: "parent_id", Label: "上级部门编号", Width: 14, Format: func(d *model.Department) any { return d.ParentID }},
	{Field: "ancestors", Label: "祖级列表", Width: 30, Format: func(d *model.Department) any { return d.Ancestors }},
	{Field: "sort", Label: "显示顺序", Width: 10, Format: func(d *model.Department) any { return d.Sort }},
	{Field: "status", Label: "部门状态", Width: 10, Format: func(d *model.Department) any { return deptStatusLabel(d.Status) }},
	{Field: "is_system", Label: "系统内置", Width: 10, Format: func(d *model.Department) any { return yesNo(d.IsSystem) }},
	{Field: "description", Label: "描述", Width: 36, Format: func(d *model.Department) any { return d.Description }},
	{Field: "created_at", Label: "创建时间", Width: 20, Format: func(d *model.Department) any { return d.CreatedAt.Format("2006-01-02 15:04:05") }},
}

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportDepartments 按查询条件导出部门列表为 Excel
	ExportDepartments(ctx context.Context, query *dto.DepartmentQuery) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

func (s *exportService) ExportDepartments(ctx context.Context, query *dto.DepartmentQuery) (*bytes.Buffer, string, error) {
	filter := repository.DepartmentFilter{}
	if query != nil {
		filter.Keyword = strings.TrimSpace(query.Description)
		filter.Status = query.Status
	}

	depts, err := s.repo.Department.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询部门列表失败", zap.Error(err))
		return nil, "", err
	}

	buf, err := writeSheet("部门数据", DepartmentExportColumns, depts)
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("部门数据_%s.xlsx", s.now().Format("20060102150405"))
	return buf, filename, nil
}

// writeSheet 按列定义将 rows 写入单 Sheet 工作簿：首行表头，其余为数据行
func writeSheet[T any](sheetName string, columns []ExportColumn[T], rows []T) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	for i, col := range columns {
		name := colName(i)
		if err := f.SetColWidth(sheetName, name, name, col.Width); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell(name, 1), col.Label); err != nil {
			return nil, err
		}
	}
	if len(columns) > 0 {
		if err := f.SetCellStyle(sheetName, "A1", cell(colName(len(columns)-1), 1), headerStyle); err != nil {
			return nil, err
		}
	}

	for r := range rows {
		for i, col := range columns {
			if err := f.SetCellValue(sheetName, cell(colName(i), r+2), col.Format(&rows[r])); err != nil {
				return nil, err
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return col + strconv.Itoa(row)
}

func deptStatusLabel(status int8) string {
	if status == model.DeptStatusEnabled {
		return "正常"
	}
	return "停用"
}

func yesNo(b bool) string {
	if b {
		return "是"
	}
	return "否"
}
