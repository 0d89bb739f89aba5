package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// ClassListFilters 班级列表过滤条件
type ClassListFilters struct {
	Search          string
	CenterID        string
	TeacherID       string
	IncludeInactive bool
}

// ClassRepository 班级数据访问接口
type ClassRepository interface {
	Create(ctx context.Context, class *model.Class, teacherIDs []string) error
	GetByID(ctx context.Context, id string) (*model.Class, error)
	Update(ctx context.Context, class *model.Class) error
	SetTeachers(ctx context.Context, classID string, teacherIDs []string) error
	SetEnrollment(ctx context.Context, classID string, n int) error
	List(ctx context.Context, scope authz.Scope, filters *ClassListFilters, page Page) ([]model.Class, int64, error)
}

// classRepo ClassRepository 的 GORM 实现
type classRepo struct {
	db *gorm.DB
}

// NewClassRepo 创建 ClassRepository 实例
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

var classScopeCols = scopeColumns{center: "classes.center_id", class: "classes.class_id"}

func (r *classRepo) Create(ctx context.Context, class *model.Class, teacherIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(class).Error; err != nil {
			return translate(err)
		}
		return replaceTeachers(tx, class.ClassID, teacherIDs)
	})
}

func (r *classRepo) GetByID(ctx context.Context, id string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Preload("Teachers").
		Where("class_id = ?", id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) Update(ctx context.Context, class *model.Class) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(class).Error)
}

func (r *classRepo) SetTeachers(ctx context.Context, classID string, teacherIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceTeachers(tx, classID, teacherIDs)
	})
}

func replaceTeachers(tx *gorm.DB, classID string, teacherIDs []string) error {
	if err := tx.Where("class_id = ?", classID).Delete(&model.ClassTeacher{}).Error; err != nil {
		return err
	}
	if len(teacherIDs) == 0 {
		return nil
	}
	links := make([]model.ClassTeacher, 0, len(teacherIDs))
	for _, id := range teacherIDs {
		links = append(links, model.ClassTeacher{ClassID: classID, UserID: id})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

// SetEnrollment 仅更新计数列，不触碰 updated_at 以外的字段
func (r *classRepo) SetEnrollment(ctx context.Context, classID string, n int) error {
	return r.db.WithContext(ctx).
		Model(&model.Class{}).
		Where("class_id = ?", classID).
		Update("current_enrollment", n).Error
}

func (r *classRepo) List(ctx context.Context, scope authz.Scope, filters *ClassListFilters, page Page) ([]model.Class, int64, error) {
	var classes []model.Class
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Class{})
	db = applyScope(db, scope, classScopeCols)

	includeInactive := false
	if filters != nil {
		includeInactive = filters.IncludeInactive
		if filters.Search != "" {
			p := likePattern(filters.Search)
			db = db.Where("(classes.name ILIKE ? OR classes.room ILIKE ?)", p, p)
		}
		if filters.CenterID != "" {
			db = db.Where("classes.center_id = ?", filters.CenterID)
		}
		if filters.TeacherID != "" {
			db = db.Where("EXISTS (SELECT 1 FROM class_teachers ct WHERE ct.class_id = classes.class_id AND ct.user_id = ?)", filters.TeacherID)
		}
	}
	db = activeOnly(db, "classes", includeInactive)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := paginate(db, page).
		Preload("Teachers").
		Order("classes.name ASC").
		Find(&classes).Error; err != nil {
		return nil, 0, err
	}
	return classes, total, nil
}
