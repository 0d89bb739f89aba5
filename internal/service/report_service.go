package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
)

// ErrReportGenerateFail 生成报表失败
var ErrReportGenerateFail = apperrors.New(apperrors.KindInternal, 50101, "生成 Excel 文件失败")

// ReportService 报表导出接口
//
// 可见范围与列表接口一致，导出以 bytes.Buffer 返回，由 Handler 设置响应头后写出。
type ReportService interface {
	AttendanceReport(ctx context.Context, actor *authz.Actor, req *dto.AttendanceReportRequest) (*bytes.Buffer, string, error)
	PaymentReport(ctx context.Context, actor *authz.Actor, req *dto.PaymentReportRequest) (*bytes.Buffer, string, error)
}

type reportService struct {
	*core
}

// NewReportService 创建 ReportService 实例
func NewReportService(c *core) ReportService {
	return &reportService{core: c}
}

// ──── AttendanceReport ────

func (s *reportService) AttendanceReport(ctx context.Context, actor *authz.Actor, req *dto.AttendanceReportRequest) (*bytes.Buffer, string, error) {
	from, err := parseOptDate("date_from", req.DateFrom)
	if err != nil {
		return nil, "", err
	}
	to, err := parseOptDate("date_to", req.DateTo)
	if err != nil {
		return nil, "", err
	}
	filters := &repository.AttendanceListFilters{ChildID: req.ChildID, ClassID: req.ClassID, DateFrom: from, DateTo: to}
	records, _, err := s.repo.Attendance.List(ctx, authz.ScopeFor(actor, authz.KindAttendance), filters, repository.Unpaged)
	if err != nil {
		return nil, "", s.dbErr("查询考勤记录失败", err)
	}

	childIDs := make([]string, 0, len(records))
	for _, r := range records {
		childIDs = append(childIDs, r.ChildID)
	}
	names, err := s.childNames(ctx, childIDs)
	if err != nil {
		return nil, "", err
	}
	classNames := s.classNames(ctx, records)

	headers := []string{"日期", "儿童", "班级", "状态", "签到(UTC)", "签退(UTC)", "迟到(分钟)", "早退(分钟)", "备注"}
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.Date.Format(dto.DateLayout),
			names[r.ChildID],
			classNames[model.StrVal(r.ClassID)],
			r.Status,
			clock(r.CheckIn),
			clock(r.CheckOut),
			r.LateMinutes,
			r.EarlyDepartureMinutes,
			r.Notes,
		})
	}

	buf, err := s.render("考勤", "考勤报表", headers, []float64{12, 20, 16, 10, 10, 10, 12, 12, 30}, rows)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("attendance_%s.xlsx", s.now().Format("20060102")), nil
}

// ──── PaymentReport ────

func (s *reportService) PaymentReport(ctx context.Context, actor *authz.Actor, req *dto.PaymentReportRequest) (*bytes.Buffer, string, error) {
	from, err := parseOptDate("due_from", req.DueFrom)
	if err != nil {
		return nil, "", err
	}
	to, err := parseOptDate("due_to", req.DueTo)
	if err != nil {
		return nil, "", err
	}
	filters := &repository.PaymentListFilters{Status: req.Status, DueFrom: from, DueTo: to}
	payments, _, err := s.repo.Payment.List(ctx, authz.ScopeFor(actor, authz.KindPayment), filters, repository.Unpaged)
	if err != nil {
		return nil, "", s.dbErr("查询账单失败", err)
	}

	childIDs := make([]string, 0, len(payments))
	for _, p := range payments {
		childIDs = append(childIDs, p.ChildID)
	}
	names, err := s.childNames(ctx, childIDs)
	if err != nil {
		return nil, "", err
	}

	headers := []string{"截止日", "儿童", "说明", "币种", "应收", "已付", "欠款", "状态", "付款日期"}
	rows := make([][]any, 0, len(payments))
	for _, p := range payments {
		paid := ""
		if p.PaidDate != nil {
			paid = p.PaidDate.Format(dto.DateLayout)
		}
		rows = append(rows, []any{
			p.DueDate.Format(dto.DateLayout),
			names[p.ChildID],
			p.Description,
			p.Currency,
			p.TotalAmount,
			p.PaidAmount,
			balance(p.TotalAmount, p.PaidAmount),
			p.Status,
			paid,
		})
	}

	buf, err := s.render("缴费", "缴费报表", headers, []float64{12, 20, 30, 8, 12, 12, 12, 10, 12}, rows)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("payments_%s.xlsx", s.now().Format("20060102")), nil
}

// render 标题行 + 表头 + 数据行
func (s *reportService) render(sheetName, title string, headers []string, widths []float64, rows [][]any) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s（导出时间 %s）", title, s.now().Format("2006-01-02 15:04")))
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))

	// 表头
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	// 数据行
	for r, values := range rows {
		for c, v := range values {
			f.SetCellValue(sheetName, cell(colName(c), r+3), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, ErrReportGenerateFail.Wrap(err)
	}
	return buf, nil
}

func (s *reportService) childNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string)
	ids = uniqueStrings(ids)
	if len(ids) == 0 {
		return names, nil
	}
	children, err := s.repo.Child.ListByIDs(ctx, ids)
	if err != nil {
		return nil, s.dbErr("查询儿童失败", err)
	}
	for _, c := range children {
		names[c.ChildID] = c.FirstName + " " + c.LastName
	}
	return names, nil
}

// classNames 班级名称缺失时留空，不影响导出
func (s *reportService) classNames(ctx context.Context, records []model.Attendance) map[string]string {
	names := make(map[string]string)
	for _, r := range records {
		id := model.StrVal(r.ClassID)
		if id == "" {
			continue
		}
		if _, ok := names[id]; ok {
			continue
		}
		names[id] = ""
		if class, err := s.repo.Class.GetByID(ctx, id); err == nil {
			names[id] = class.Name
		}
	}
	return names
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("15:04")
}

func balance(total, paid float64) float64 {
	if paid >= total {
		return 0
	}
	return float64(int64((total-paid)*100+0.5)) / 100
}
