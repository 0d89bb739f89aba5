package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// CenterListFilters 中心列表过滤条件
type CenterListFilters struct {
	Search          string
	IsActive        *bool
	IncludeInactive bool
}

// CenterCounts 中心统计计数
type CenterCounts struct {
	Children int64
	Teachers int64
	Parents  int64
	Classes  int64
}

// CenterRepository 中心数据访问接口
type CenterRepository interface {
	Create(ctx context.Context, center *model.Center) error
	GetByID(ctx context.Context, id string) (*model.Center, error)
	GetByCode(ctx context.Context, code string) (*model.Center, error)
	Update(ctx context.Context, center *model.Center) error
	List(ctx context.Context, scope authz.Scope, filters *CenterListFilters, page Page) ([]model.Center, int64, error)
	Counts(ctx context.Context, centerID string) (*CenterCounts, error)
	CountEnrolled(ctx context.Context, centerID string) (int64, error)
}

// centerRepo CenterRepository 的 GORM 实现
type centerRepo struct {
	db *gorm.DB
}

// NewCenterRepo 创建 CenterRepository 实例
func NewCenterRepo(db *gorm.DB) CenterRepository {
	return &centerRepo{db: db}
}

var centerScopeCols = scopeColumns{center: "centers.center_id"}

func (r *centerRepo) Create(ctx context.Context, center *model.Center) error {
	return translate(r.db.WithContext(ctx).Create(center).Error)
}

func (r *centerRepo) GetByID(ctx context.Context, id string) (*model.Center, error) {
	var center model.Center
	err := r.db.WithContext(ctx).
		Where("center_id = ?", id).
		First(&center).Error
	if err != nil {
		return nil, err
	}
	return &center, nil
}

func (r *centerRepo) GetByCode(ctx context.Context, code string) (*model.Center, error) {
	var center model.Center
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&center).Error
	if err != nil {
		return nil, err
	}
	return &center, nil
}

func (r *centerRepo) Update(ctx context.Context, center *model.Center) error {
	return translate(r.db.WithContext(ctx).Save(center).Error)
}

func (r *centerRepo) List(ctx context.Context, scope authz.Scope, filters *CenterListFilters, page Page) ([]model.Center, int64, error) {
	var centers []model.Center
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Center{})
	db = applyScope(db, scope, centerScopeCols)

	includeInactive := false
	if filters != nil {
		includeInactive = filters.IncludeInactive || filters.IsActive != nil
		if filters.Search != "" {
			p := likePattern(filters.Search)
			db = db.Where("(centers.name ILIKE ? OR centers.code ILIKE ?)", p, p)
		}
		if filters.IsActive != nil {
			db = db.Where("centers.is_active = ?", *filters.IsActive)
		}
	}
	db = activeOnly(db, "centers", includeInactive)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := paginate(db, page).
		Order("centers.name ASC").
		Find(&centers).Error; err != nil {
		return nil, 0, err
	}
	return centers, total, nil
}

func (r *centerRepo) Counts(ctx context.Context, centerID string) (*CenterCounts, error) {
	var counts CenterCounts
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Child{}).
		Where("center_id = ? AND is_active = ? AND enrollment_status = ?", centerID, true, model.EnrollmentEnrolled).
		Count(&counts.Children).Error; err != nil {
		return nil, err
	}

	type roleCount struct {
		Role  string
		Count int64
	}
	var rows []roleCount
	if err := db.Model(&model.User{}).
		Select("role, COUNT(*) AS count").
		Where("center_id = ? AND is_active = ?", centerID, true).
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		switch row.Role {
		case model.RoleTeacher:
			counts.Teachers = row.Count
		case model.RoleParent:
			counts.Parents = row.Count
		}
	}

	if err := db.Model(&model.Class{}).
		Where("center_id = ? AND is_active = ?", centerID, true).
		Count(&counts.Classes).Error; err != nil {
		return nil, err
	}
	return &counts, nil
}

func (r *centerRepo) CountEnrolled(ctx context.Context, centerID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Child{}).
		Where("center_id = ? AND is_active = ? AND enrollment_status = ?", centerID, true, model.EnrollmentEnrolled).
		Count(&n).Error
	return n, err
}
