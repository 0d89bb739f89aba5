package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// HealthRecordListFilters 健康记录列表过滤条件
type HealthRecordListFilters struct {
	ChildID         string
	DateFrom        *time.Time
	DateTo          *time.Time
	IncludeInactive bool
}

// HealthRecordRepository 健康记录数据访问接口
type HealthRecordRepository interface {
	// Create (child_id, record_date) 重复时返回 ErrDuplicate
	Create(ctx context.Context, h *model.HealthRecord) error
	GetByID(ctx context.Context, id string) (*model.HealthRecord, error)
	Update(ctx context.Context, h *model.HealthRecord) error
	List(ctx context.Context, scope authz.Scope, filters *HealthRecordListFilters, page Page) ([]model.HealthRecord, int64, error)
}

// healthRecordRepo HealthRecordRepository 的 GORM 实现
type healthRecordRepo struct {
	db *gorm.DB
}

// NewHealthRecordRepo 创建 HealthRecordRepository 实例
func NewHealthRecordRepo(db *gorm.DB) HealthRecordRepository {
	return &healthRecordRepo{db: db}
}

var healthScopeCols = scopeColumns{
	center: "health_records.center_id",
	class:  "health_records.class_id",
	child:  "health_records.child_id",
	owner:  "health_records.recorded_by",
}

func (r *healthRecordRepo) Create(ctx context.Context, h *model.HealthRecord) error {
	return translate(r.db.WithContext(ctx).Create(h).Error)
}

func (r *healthRecordRepo) GetByID(ctx context.Context, id string) (*model.HealthRecord, error) {
	var h model.HealthRecord
	err := r.db.WithContext(ctx).
		Where("health_record_id = ?", id).
		First(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *healthRecordRepo) Update(ctx context.Context, h *model.HealthRecord) error {
	return translate(r.db.WithContext(ctx).Save(h).Error)
}

func (r *healthRecordRepo) List(ctx context.Context, scope authz.Scope, filters *HealthRecordListFilters, page Page) ([]model.HealthRecord, int64, error) {
	var records []model.HealthRecord
	var total int64

	db := r.db.WithContext(ctx).Model(&model.HealthRecord{})
	db = applyScope(db, scope, healthScopeCols)

	includeInactive := false
	if filters != nil {
		includeInactive = filters.IncludeInactive
		if filters.ChildID != "" {
			db = db.Where("health_records.child_id = ?", filters.ChildID)
		}
		if filters.DateFrom != nil {
			db = db.Where("health_records.record_date >= ?", model.DateOnly(*filters.DateFrom))
		}
		if filters.DateTo != nil {
			db = db.Where("health_records.record_date <= ?", model.DateOnly(*filters.DateTo))
		}
	}
	db = activeOnly(db, "health_records", includeInactive)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := paginate(db, page).
		Order("health_records.record_date DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
