package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// AttendanceListFilters 考勤列表过滤条件
type AttendanceListFilters struct {
	ChildID         string
	ClassID         string
	Status          string
	DateFrom        *time.Time
	DateTo          *time.Time
	IncludeInactive bool
}

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	// Create (child_id, date) 重复时返回 ErrDuplicate
	Create(ctx context.Context, a *model.Attendance) error
	GetByID(ctx context.Context, id string) (*model.Attendance, error)
	// GetByChildDate 包含已停用记录
	GetByChildDate(ctx context.Context, childID string, date time.Time) (*model.Attendance, error)
	Update(ctx context.Context, a *model.Attendance) error
	List(ctx context.Context, scope authz.Scope, filters *AttendanceListFilters, page Page) ([]model.Attendance, int64, error)
	CountByStatus(ctx context.Context, centerID string, date time.Time) (map[string]int64, error)
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

var attendanceScopeCols = scopeColumns{
	center: "attendance.center_id",
	class:  "attendance.class_id",
	child:  "attendance.child_id",
	owner:  "attendance.checked_in_by",
}

func (r *attendanceRepo) Create(ctx context.Context, a *model.Attendance) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string) (*model.Attendance, error) {
	var a model.Attendance
	err := r.db.WithContext(ctx).
		Where("attendance_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepo) GetByChildDate(ctx context.Context, childID string, date time.Time) (*model.Attendance, error) {
	var a model.Attendance
	err := r.db.WithContext(ctx).
		Where("child_id = ? AND date = ?", childID, model.DateOnly(date)).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepo) Update(ctx context.Context, a *model.Attendance) error {
	return translate(r.db.WithContext(ctx).Save(a).Error)
}

func (r *attendanceRepo) List(ctx context.Context, scope authz.Scope, filters *AttendanceListFilters, page Page) ([]model.Attendance, int64, error) {
	var records []model.Attendance
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Attendance{})
	db = applyScope(db, scope, attendanceScopeCols)

	includeInactive := false
	if filters != nil {
		includeInactive = filters.IncludeInactive
		if filters.ChildID != "" {
			db = db.Where("attendance.child_id = ?", filters.ChildID)
		}
		if filters.ClassID != "" {
			db = db.Where("attendance.class_id = ?", filters.ClassID)
		}
		if filters.Status != "" {
			db = db.Where("attendance.status = ?", filters.Status)
		}
		if filters.DateFrom != nil {
			db = db.Where("attendance.date >= ?", model.DateOnly(*filters.DateFrom))
		}
		if filters.DateTo != nil {
			db = db.Where("attendance.date <= ?", model.DateOnly(*filters.DateTo))
		}
	}
	db = activeOnly(db, "attendance", includeInactive)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := paginate(db, page).
		Order("attendance.date DESC, attendance.child_id ASC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *attendanceRepo) CountByStatus(ctx context.Context, centerID string, date time.Time) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Select("status, COUNT(*) AS count").
		Where("center_id = ? AND date = ? AND is_active = ?", centerID, model.DateOnly(date), true).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
