package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/cliffordobure/daycare-sub000/config"
	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/service"
	"github.com/cliffordobure/daycare-sub000/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Center       *CenterHandler
	Child        *ChildHandler
	Class        *ClassHandler
	Attendance   *AttendanceHandler
	Activity     *ActivityHandler
	Payment      *PaymentHandler
	HealthRecord *HealthRecordHandler
	Message      *MessageHandler
	Notification *NotificationHandler
	Report       *ReportHandler
	Calendar     *CalendarHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, cfg *config.Config) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, cfg),
		User:         NewUserHandler(svc.User),
		Center:       NewCenterHandler(svc.Center),
		Child:        NewChildHandler(svc.Child),
		Class:        NewClassHandler(svc.Class),
		Attendance:   NewAttendanceHandler(svc.Attendance),
		Activity:     NewActivityHandler(svc.Activity),
		Payment:      NewPaymentHandler(svc.Payment),
		HealthRecord: NewHealthRecordHandler(svc.HealthRecord),
		Message:      NewMessageHandler(svc.Message),
		Notification: NewNotificationHandler(svc.Notification),
		Report:       NewReportHandler(svc.Report),
		Calendar:     NewCalendarHandler(svc.Calendar),
	}
}

// statusFunc 各 Service 的 SetStatus
type statusFunc func(ctx context.Context, actor *authz.Actor, id string, active bool) error

// setStatus PUT /:id/status 的通用实现
func setStatus(c *gin.Context, fn statusFunc) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req dto.StatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := fn(c.Request.Context(), actor, id, *req.IsActive); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"id": id, "is_active": *req.IsActive})
}

// deactivate DELETE /:id 的通用实现（软删除）
func deactivate(c *gin.Context, fn statusFunc) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := fn(c.Request.Context(), actor, id, false); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}
