package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/service"
	"github.com/cliffordobure/daycare-sub000/pkg/response"
)

// HealthRecordHandler 健康档案 HTTP 处理器
type HealthRecordHandler struct {
	healthSvc service.HealthRecordService
}

// NewHealthRecordHandler 创建 HealthRecordHandler
func NewHealthRecordHandler(healthSvc service.HealthRecordService) *HealthRecordHandler {
	return &HealthRecordHandler{healthSvc: healthSvc}
}

// Create 新建健康记录
// POST /api/health-records
func (h *HealthRecordHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateHealthRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.healthSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, record)
}

// Get 健康记录详情
// GET /api/health-records/:id
func (h *HealthRecordHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	record, err := h.healthSvc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, record)
}

// List 健康记录列表
// GET /api/health-records
func (h *HealthRecordHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.HealthRecordListRequest
	if !bindQuery(c, &req) {
		return
	}

	records, total, err := h.healthSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, records, total, req.GetPage(), req.GetPageSize())
}

// Update 更新健康记录
// PUT /api/health-records/:id
func (h *HealthRecordHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.UpdateHealthRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.healthSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, record)
}

// AddIncident 追加事故记录，可选通知家长
// POST /api/health-records/:id/incidents
func (h *HealthRecordHandler) AddIncident(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.IncidentRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.healthSvc.AddIncident(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, record)
}

// SetStatus 启用/停用健康记录
// PUT /api/health-records/:id/status
func (h *HealthRecordHandler) SetStatus(c *gin.Context) {
	setStatus(c, h.healthSvc.SetStatus)
}

// Delete 删除健康记录（软删除）
// DELETE /api/health-records/:id
func (h *HealthRecordHandler) Delete(c *gin.Context) {
	deactivate(c, h.healthSvc.SetStatus)
}
