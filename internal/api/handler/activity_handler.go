package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/service"
	"github.com/cliffordobure/daycare-sub000/pkg/response"
)

// ActivityHandler 活动模块 HTTP 处理器
type ActivityHandler struct {
	activitySvc service.ActivityService
}

// NewActivityHandler 创建 ActivityHandler
func NewActivityHandler(activitySvc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activitySvc: activitySvc}
}

// Create 创建活动
// POST /api/activities
func (h *ActivityHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateActivityRequest
	if !bindJSON(c, &req) {
		return
	}

	activity, err := h.activitySvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, activity)
}

// Get 活动详情
// GET /api/activities/:id
func (h *ActivityHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	activity, err := h.activitySvc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, activity)
}

// List 活动列表
// GET /api/activities
func (h *ActivityHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ActivityListRequest
	if !bindQuery(c, &req) {
		return
	}

	activities, total, err := h.activitySvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, activities, total, req.GetPage(), req.GetPageSize())
}

// Update 更新活动
// PUT /api/activities/:id
func (h *ActivityHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.UpdateActivityRequest
	if !bindJSON(c, &req) {
		return
	}

	activity, err := h.activitySvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, activity)
}

// ChangeStatus 变更活动进度（planned → in_progress → completed / cancelled）
// PUT /api/activities/:id/status
func (h *ActivityHandler) ChangeStatus(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.ActivityStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	activity, err := h.activitySvc.ChangeStatus(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, activity)
}

// AddUpdate 追加活动动态
// POST /api/activities/:id/updates
func (h *ActivityHandler) AddUpdate(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.ActivityUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	activity, err := h.activitySvc.AddUpdate(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, activity)
}

// AddPhoto 追加活动照片
// POST /api/activities/:id/photos
func (h *ActivityHandler) AddPhoto(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.ActivityPhotoRequest
	if !bindJSON(c, &req) {
		return
	}

	activity, err := h.activitySvc.AddPhoto(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, activity)
}

// Delete 删除活动（软删除）
// DELETE /api/activities/:id
func (h *ActivityHandler) Delete(c *gin.Context) {
	deactivate(c, h.activitySvc.SetStatus)
}
