package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/service"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ReportHandler 报表导出 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Attendance 导出考勤报表
// GET /api/reports/attendance.xlsx?class_id=&date_from=&date_to=
func (h *ReportHandler) Attendance(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AttendanceReportRequest
	if !bindQuery(c, &req) {
		return
	}

	buf, filename, err := h.reportSvc.AttendanceReport(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	sendFile(c, xlsxContentType, filename, buf.Bytes())
}

// Payments 导出缴费报表
// GET /api/reports/payments.xlsx?status=&due_from=&due_to=
func (h *ReportHandler) Payments(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.PaymentReportRequest
	if !bindQuery(c, &req) {
		return
	}

	buf, filename, err := h.reportSvc.PaymentReport(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	sendFile(c, xlsxContentType, filename, buf.Bytes())
}

// CalendarHandler 日历订阅 HTTP 处理器
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// Class 导出班级日程（iCalendar）
// GET /api/classes/:id/calendar.ics
func (h *CalendarHandler) Class(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	data, filename, err := h.calendarSvc.ClassCalendar(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	sendFile(c, icsContentType, filename, data)
}
