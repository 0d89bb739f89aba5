package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/service"
	"github.com/cliffordobure/daycare-sub000/pkg/response"
)

// NotificationHandler 通知模块 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// Create 创建通知（每个接收人一条）
// POST /api/notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateNotificationRequest
	if !bindJSON(c, &req) {
		return
	}

	items, err := h.notificationSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, items)
}

// Get 通知详情
// GET /api/notifications/:id
func (h *NotificationHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	item, err := h.notificationSvc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, item)
}

// List 我的通知
// GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.NotificationListRequest
	if !bindQuery(c, &req) {
		return
	}

	items, total, err := h.notificationSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// MarkRead 标记已读
// PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	item, err := h.notificationSvc.MarkRead(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, item)
}

// MarkAllRead 全部标记已读
// PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	n, err := h.notificationSvc.MarkAllRead(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, dto.MarkAllReadResponse{Updated: n})
}

// SetStatus 启用/停用通知
// PUT /api/notifications/:id/status
func (h *NotificationHandler) SetStatus(c *gin.Context) {
	setStatus(c, h.notificationSvc.SetStatus)
}

// Delete 删除通知（软删除）
// DELETE /api/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	deactivate(c, h.notificationSvc.SetStatus)
}
