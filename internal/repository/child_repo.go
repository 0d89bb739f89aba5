package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// ChildListFilters 儿童列表过滤条件
type ChildListFilters struct {
	Search          string
	Status          string
	ClassID         string
	ParentID        string
	CenterID        string
	IncludeInactive bool
}

// ChildRepository 儿童数据访问接口
type ChildRepository interface {
	Create(ctx context.Context, child *model.Child, parentIDs []string) error
	GetByID(ctx context.Context, id string) (*model.Child, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Child, error)
	Update(ctx context.Context, child *model.Child) error
	SetParents(ctx context.Context, childID string, parentIDs []string) error
	List(ctx context.Context, scope authz.Scope, filters *ChildListFilters, page Page) ([]model.Child, int64, error)
	ListByClass(ctx context.Context, classID string) ([]model.Child, error)
	CountEnrolledInClass(ctx context.Context, classID string) (int64, error)
}

// childRepo ChildRepository 的 GORM 实现
type childRepo struct {
	db *gorm.DB
}

// NewChildRepo 创建 ChildRepository 实例
func NewChildRepo(db *gorm.DB) ChildRepository {
	return &childRepo{db: db}
}

var childScopeCols = scopeColumns{
	center: "children.center_id",
	class:  "children.current_class_id",
	child:  "children.child_id",
}

// Create 儿童与家长关联在同一事务中写入
func (r *childRepo) Create(ctx context.Context, child *model.Child, parentIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(child).Error; err != nil {
			return translate(err)
		}
		return replaceParents(tx, child.ChildID, parentIDs)
	})
}

func (r *childRepo) GetByID(ctx context.Context, id string) (*model.Child, error) {
	var child model.Child
	err := r.db.WithContext(ctx).
		Preload("Parents").
		Where("child_id = ?", id).
		First(&child).Error
	if err != nil {
		return nil, err
	}
	return &child, nil
}

func (r *childRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Child, error) {
	var children []model.Child
	if len(ids) == 0 {
		return children, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Parents").
		Where("child_id IN ?", ids).
		Find(&children).Error
	return children, err
}

func (r *childRepo) Update(ctx context.Context, child *model.Child) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(child).Error)
}

func (r *childRepo) SetParents(ctx context.Context, childID string, parentIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceParents(tx, childID, parentIDs)
	})
}

func replaceParents(tx *gorm.DB, childID string, parentIDs []string) error {
	if err := tx.Where("child_id = ?", childID).Delete(&model.ChildParent{}).Error; err != nil {
		return err
	}
	if len(parentIDs) == 0 {
		return nil
	}
	links := make([]model.ChildParent, 0, len(parentIDs))
	for _, id := range parentIDs {
		links = append(links, model.ChildParent{ChildID: childID, UserID: id})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

func (r *childRepo) List(ctx context.Context, scope authz.Scope, filters *ChildListFilters, page Page) ([]model.Child, int64, error) {
	var children []model.Child
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Child{})
	db = applyScope(db, scope, childScopeCols)

	includeInactive := false
	if filters != nil {
		includeInactive = filters.IncludeInactive
		if filters.Search != "" {
			p := likePattern(filters.Search)
			db = db.Where("(children.first_name ILIKE ? OR children.last_name ILIKE ?)", p, p)
		}
		if filters.Status != "" {
			db = db.Where("children.enrollment_status = ?", filters.Status)
		}
		if filters.ClassID != "" {
			db = db.Where("children.current_class_id = ?", filters.ClassID)
		}
		if filters.CenterID != "" {
			db = db.Where("children.center_id = ?", filters.CenterID)
		}
		if filters.ParentID != "" {
			db = db.Where("EXISTS (SELECT 1 FROM child_parents cp WHERE cp.child_id = children.child_id AND cp.user_id = ?)", filters.ParentID)
		}
	}
	db = activeOnly(db, "children", includeInactive)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := paginate(db, page).
		Preload("Parents").
		Order("children.last_name ASC, children.first_name ASC").
		Find(&children).Error; err != nil {
		return nil, 0, err
	}
	return children, total, nil
}

func (r *childRepo) ListByClass(ctx context.Context, classID string) ([]model.Child, error) {
	var children []model.Child
	err := r.db.WithContext(ctx).
		Preload("Parents").
		Where("current_class_id = ? AND is_active = ?", classID, true).
		Order("last_name ASC, first_name ASC").
		Find(&children).Error
	return children, err
}

func (r *childRepo) CountEnrolledInClass(ctx context.Context, classID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Child{}).
		Where("current_class_id = ? AND is_active = ? AND enrollment_status = ?", classID, true, model.EnrollmentEnrolled).
		Count(&n).Error
	return n, err
}
