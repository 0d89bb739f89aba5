package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/service"
	"github.com/cliffordobure/daycare-sub000/pkg/response"
)

// ChildHandler 幼儿档案 HTTP 处理器
type ChildHandler struct {
	childSvc service.ChildService
}

// NewChildHandler 创建 ChildHandler
func NewChildHandler(childSvc service.ChildService) *ChildHandler {
	return &ChildHandler{childSvc: childSvc}
}

// Create 新建幼儿档案
// POST /api/children
func (h *ChildHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateChildRequest
	if !bindJSON(c, &req) {
		return
	}

	child, err := h.childSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, child)
}

// Get 幼儿详情
// GET /api/children/:id
func (h *ChildHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	child, err := h.childSvc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, child)
}

// List 幼儿列表
// GET /api/children
func (h *ChildHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ChildListRequest
	if !bindQuery(c, &req) {
		return
	}

	children, total, err := h.childSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, children, total, req.GetPage(), req.GetPageSize())
}

// Update 更新幼儿档案
// PUT /api/children/:id
func (h *ChildHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.UpdateChildRequest
	if !bindJSON(c, &req) {
		return
	}

	child, err := h.childSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, child)
}

// AssignClass 分班 / 调班
// PUT /api/children/:id/class
func (h *ChildHandler) AssignClass(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.AssignClassRequest
	if !bindJSON(c, &req) {
		return
	}

	child, err := h.childSvc.AssignClass(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, child)
}

// SetStatus 启用/停用档案
// PUT /api/children/:id/status
func (h *ChildHandler) SetStatus(c *gin.Context) {
	setStatus(c, h.childSvc.SetStatus)
}

// Delete 停用档案
// DELETE /api/children/:id
func (h *ChildHandler) Delete(c *gin.Context) {
	deactivate(c, h.childSvc.SetStatus)
}
