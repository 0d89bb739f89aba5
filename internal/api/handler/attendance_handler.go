package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/service"
	"github.com/cliffordobure/daycare-sub000/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Mark 登记考勤（同一幼儿同一天重复登记视为更新）
// POST /api/attendance
func (h *AttendanceHandler) Mark(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.MarkAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.attendanceSvc.Mark(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, record)
}

// Bulk 整班批量登记
// POST /api/attendance/bulk
func (h *AttendanceHandler) Bulk(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.BulkAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.attendanceSvc.Bulk(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// Get 考勤详情
// GET /api/attendance/:id
func (h *AttendanceHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	record, err := h.attendanceSvc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, record)
}

// List 考勤列表
// GET /api/attendance
func (h *AttendanceHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AttendanceListRequest
	if !bindQuery(c, &req) {
		return
	}

	records, total, err := h.attendanceSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, records, total, req.GetPage(), req.GetPageSize())
}

// Update 修改考勤
// PUT /api/attendance/:id
func (h *AttendanceHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.UpdateAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.attendanceSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, record)
}

// SetStatus 启用/停用考勤记录
// PUT /api/attendance/:id/status
func (h *AttendanceHandler) SetStatus(c *gin.Context) {
	setStatus(c, h.attendanceSvc.SetStatus)
}

// Delete 删除考勤记录（软删除）
// DELETE /api/attendance/:id
func (h *AttendanceHandler) Delete(c *gin.Context) {
	deactivate(c, h.attendanceSvc.SetStatus)
}
