package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Center       CenterRepository
	User         UserRepository
	Child        ChildRepository
	Class        ClassRepository
	Attendance   AttendanceRepository
	Activity     ActivityRepository
	Payment      PaymentRepository
	HealthRecord HealthRecordRepository
	Message      MessageRepository
	Notification NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		Center:       NewCenterRepo(db),
		User:         NewUserRepo(db),
		Child:        NewChildRepo(db),
		Class:        NewClassRepo(db),
		Attendance:   NewAttendanceRepo(db),
		Activity:     NewActivityRepo(db),
		Payment:      NewPaymentRepo(db),
		HealthRecord: NewHealthRecordRepo(db),
		Message:      NewMessageRepo(db),
		Notification: NewNotificationRepo(db),
	}
}

// Transaction 在同一事务中执行 fn，fn 收到绑定事务的 Repository
// 未持有 db 的聚合（测试 mock）直接以自身执行
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
