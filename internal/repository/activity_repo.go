package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// ActivityListFilters 活动列表过滤条件
type ActivityListFilters struct {
	ClassID         string
	TeacherID       string
	Status          string
	Type            string
	DateFrom        *time.Time
	DateTo          *time.Time
	IncludeInactive bool
}

// ActivityRepository 活动数据访问接口
type ActivityRepository interface {
	Create(ctx context.Context, a *model.Activity) error
	GetByID(ctx context.Context, id string) (*model.Activity, error)
	Update(ctx context.Context, a *model.Activity) error
	List(ctx context.Context, scope authz.Scope, filters *ActivityListFilters, page Page) ([]model.Activity, int64, error)
}

// activityRepo ActivityRepository 的 GORM 实现
type activityRepo struct {
	db *gorm.DB
}

// NewActivityRepo 创建 ActivityRepository 实例
func NewActivityRepo(db *gorm.DB) ActivityRepository {
	return &activityRepo{db: db}
}

var activityScopeCols = scopeColumns{
	center:     "activities.center_id",
	class:      "activities.class_id",
	childArray: "activities.child_ids",
	owner:      "activities.teacher_id",
}

func (r *activityRepo) Create(ctx context.Context, a *model.Activity) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *activityRepo) GetByID(ctx context.Context, id string) (*model.Activity, error) {
	var a model.Activity
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *activityRepo) Update(ctx context.Context, a *model.Activity) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *activityRepo) List(ctx context.Context, scope authz.Scope, filters *ActivityListFilters, page Page) ([]model.Activity, int64, error) {
	var activities []model.Activity
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Activity{})
	db = applyScope(db, scope, activityScopeCols)

	includeInactive := false
	if filters != nil {
		includeInactive = filters.IncludeInactive
		if filters.ClassID != "" {
			db = db.Where("activities.class_id = ?", filters.ClassID)
		}
		if filters.TeacherID != "" {
			db = db.Where("activities.teacher_id = ?", filters.TeacherID)
		}
		if filters.Status != "" {
			db = db.Where("activities.status = ?", filters.Status)
		}
		if filters.Type != "" {
			db = db.Where("activities.type = ?", filters.Type)
		}
		if filters.DateFrom != nil {
			db = db.Where("activities.start_time >= ?", model.DateOnly(*filters.DateFrom))
		}
		if filters.DateTo != nil {
			db = db.Where("activities.start_time < ?", model.DateOnly(*filters.DateTo).AddDate(0, 0, 1))
		}
	}
	db = activeOnly(db, "activities", includeInactive)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := paginate(db, page).
		Order("activities.start_time DESC").
		Find(&activities).Error; err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}
