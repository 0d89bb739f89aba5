package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/service"
	"github.com/cliffordobure/daycare-sub000/pkg/response"
)

// CenterHandler 园所模块 HTTP 处理器
type CenterHandler struct {
	centerSvc service.CenterService
}

// NewCenterHandler 创建 CenterHandler
func NewCenterHandler(centerSvc service.CenterService) *CenterHandler {
	return &CenterHandler{centerSvc: centerSvc}
}

// Create 创建园所（超级管理员）
// POST /api/centers
func (h *CenterHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateCenterRequest
	if !bindJSON(c, &req) {
		return
	}

	center, err := h.centerSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, center)
}

// Get 园所详情
// GET /api/centers/:id
func (h *CenterHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	center, err := h.centerSvc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, center)
}

// List 园所列表
// GET /api/centers
func (h *CenterHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CenterListRequest
	if !bindQuery(c, &req) {
		return
	}

	centers, total, err := h.centerSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, centers, total, req.GetPage(), req.GetPageSize())
}

// Update 更新园所
// PUT /api/centers/:id
func (h *CenterHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.UpdateCenterRequest
	if !bindJSON(c, &req) {
		return
	}

	center, err := h.centerSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, center)
}

// Stats 园所统计
// GET /api/centers/:id/stats
func (h *CenterHandler) Stats(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	stats, err := h.centerSvc.Stats(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, stats)
}

// SetStatus 启用/停用园所
// PUT /api/centers/:id/status
func (h *CenterHandler) SetStatus(c *gin.Context) {
	setStatus(c, h.centerSvc.SetStatus)
}

// Delete 停用园所
// DELETE /api/centers/:id
func (h *CenterHandler) Delete(c *gin.Context) {
	deactivate(c, h.centerSvc.SetStatus)
}
