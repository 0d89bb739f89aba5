package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/service"
	"github.com/cliffordobure/daycare-sub000/pkg/response"
)

// MessageHandler 站内信 HTTP 处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建 MessageHandler
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// Send 发送消息
// POST /api/messages
func (h *MessageHandler) Send(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.messageSvc.Send(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, msg)
}

// Get 消息详情
// GET /api/messages/:id
func (h *MessageHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	msg, err := h.messageSvc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, msg)
}

// List 收件箱 / 发件箱
// GET /api/messages?box=inbox|sent
func (h *MessageHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.MessageListRequest
	if !bindQuery(c, &req) {
		return
	}

	messages, total, err := h.messageSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, messages, total, req.GetPage(), req.GetPageSize())
}

// UnreadCount 未读数量
// GET /api/messages/unread-count
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	n, err := h.messageSvc.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, dto.UnreadCountResponse{Unread: n})
}

// MarkRead 标记已读（仅收件人）
// PUT /api/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	msg, err := h.messageSvc.MarkRead(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, msg)
}

// Delete 删除消息（仅发件人，软删除）
// DELETE /api/messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.messageSvc.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}
