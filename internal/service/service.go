package service

import (
	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/config"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
	"github.com/cliffordobure/daycare-sub000/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Center       CenterService
	Child        ChildService
	Class        ClassService
	Attendance   AttendanceService
	Activity     ActivityService
	Payment      PaymentService
	HealthRecord HealthRecordService
	Message      MessageService
	Notification NotificationService
	Report       ReportService
	Calendar     CalendarService
	Operator     OperatorService
}

// Deps 可选依赖
// Events 为空时不推送实时事件；Blacklist 为空时登出仅依赖 Token 过期
type Deps struct {
	Events    EventEmitter
	Blacklist TokenBlacklist
	Dispatch  *Dispatcher
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	deps Deps,
	logger *zap.Logger,
) *Service {
	c := newCore(repo, deps.Events, deps.Dispatch, logger)
	return &Service{
		Auth:         NewAuthService(c, &cfg.Auth, jwtMgr, deps.Blacklist),
		User:         NewUserService(c, &cfg.Auth),
		Center:       NewCenterService(c),
		Child:        NewChildService(c),
		Class:        NewClassService(c),
		Attendance:   NewAttendanceService(c),
		Activity:     NewActivityService(c),
		Payment:      NewPaymentService(c),
		HealthRecord: NewHealthRecordService(c),
		Message:      NewMessageService(c),
		Notification: NewNotificationService(c),
		Report:       NewReportService(c),
		Calendar:     NewCalendarService(c),
		Operator:     NewOperatorService(c, &cfg.Auth),
	}
}
