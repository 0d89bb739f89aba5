package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/service"
	"github.com/cliffordobure/daycare-sub000/pkg/response"
)

// ClassHandler 班级模块 HTTP 处理器
type ClassHandler struct {
	classSvc service.ClassService
}

// NewClassHandler 创建 ClassHandler
func NewClassHandler(classSvc service.ClassService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc}
}

// Create 创建班级
// POST /api/classes
func (h *ClassHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateClassRequest
	if !bindJSON(c, &req) {
		return
	}

	class, err := h.classSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, class)
}

// Get 班级详情
// GET /api/classes/:id
func (h *ClassHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	class, err := h.classSvc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, class)
}

// List 班级列表
// GET /api/classes
func (h *ClassHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ClassListRequest
	if !bindQuery(c, &req) {
		return
	}

	classes, total, err := h.classSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, classes, total, req.GetPage(), req.GetPageSize())
}

// Update 更新班级
// PUT /api/classes/:id
func (h *ClassHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.UpdateClassRequest
	if !bindJSON(c, &req) {
		return
	}

	class, err := h.classSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, class)
}

// SetTeachers 替换班级教师
// PUT /api/classes/:id/teachers
func (h *ClassHandler) SetTeachers(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.SetTeachersRequest
	if !bindJSON(c, &req) {
		return
	}

	class, err := h.classSvc.SetTeachers(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, class)
}

// Roster 班级花名册
// GET /api/classes/:id/children
func (h *ClassHandler) Roster(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	children, err := h.classSvc.Roster(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, children)
}

// SetStatus 启用/停用班级
// PUT /api/classes/:id/status
func (h *ClassHandler) SetStatus(c *gin.Context) {
	setStatus(c, h.classSvc.SetStatus)
}

// Delete 停用班级
// DELETE /api/classes/:id
func (h *ClassHandler) Delete(c *gin.Context) {
	deactivate(c, h.classSvc.SetStatus)
}
