package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// UserListFilters 用户列表过滤条件
type UserListFilters struct {
	Search          string
	Role            string
	CenterID        string
	IsActive        *bool
	IncludeInactive bool
}

// ParentLinks 家长与孩子的关系快照
type ParentLinks struct {
	ChildIDs      []string
	ChildClassIDs []string
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// FindByEmail 返回所有中心内该邮箱的账号（不区分大小写）
	FindByEmail(ctx context.Context, email string) ([]model.User, error)
	GetByEmailInCenter(ctx context.Context, email, centerID string) (*model.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, scope authz.Scope, filters *UserListFilters, page Page) ([]model.User, int64, error)
	AssignedClassIDs(ctx context.Context, teacherID string) ([]string, error)
	ParentLinks(ctx context.Context, parentID string) (*ParentLinks, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

var userScopeCols = scopeColumns{center: "users.center_id", user: "users.user_id = ?"}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return translate(r.db.WithContext(ctx).Omit("Center").Create(user).Error)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Preload("Center").
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Find(&users).Error
	return users, err
}

func (r *userRepo) GetByEmailInCenter(ctx context.Context, email, centerID string) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx).Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email)))
	if centerID == "" {
		db = db.Where("center_id IS NULL")
	} else {
		db = db.Where("center_id = ?", centerID)
	}
	if err := db.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ListByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Find(&users).Error
	return users, err
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return translate(r.db.WithContext(ctx).Omit("Center").Save(user).Error)
}

func (r *userRepo) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"last_login":    at,
			"last_activity": at,
		}).Error
}

func (r *userRepo) List(ctx context.Context, scope authz.Scope, filters *UserListFilters, page Page) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})
	db = applyScope(db, scope, userScopeCols)

	includeInactive := false
	if filters != nil {
		includeInactive = filters.IncludeInactive || filters.IsActive != nil
		if filters.Search != "" {
			p := likePattern(filters.Search)
			db = db.Where("(users.first_name ILIKE ? OR users.last_name ILIKE ? OR users.email ILIKE ?)", p, p, p)
		}
		if filters.Role != "" {
			db = db.Where("users.role = ?", filters.Role)
		}
		if filters.CenterID != "" {
			db = db.Where("users.center_id = ?", filters.CenterID)
		}
		if filters.IsActive != nil {
			db = db.Where("users.is_active = ?", *filters.IsActive)
		}
	}
	db = activeOnly(db, "users", includeInactive)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := paginate(db, page).
		Order("users.created_at DESC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepo) AssignedClassIDs(ctx context.Context, teacherID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Table("class_teachers AS ct").
		Joins("JOIN classes c ON c.class_id = ct.class_id").
		Where("ct.user_id = ? AND c.is_active = ?", teacherID, true).
		Pluck("ct.class_id", &ids).Error
	return ids, err
}

func (r *userRepo) ParentLinks(ctx context.Context, parentID string) (*ParentLinks, error) {
	type row struct {
		ChildID        string
		CurrentClassID *string
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("child_parents AS cp").
		Select("c.child_id, c.current_class_id").
		Joins("JOIN children c ON c.child_id = cp.child_id").
		Where("cp.user_id = ? AND c.is_active = ?", parentID, true).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	links := &ParentLinks{}
	seen := make(map[string]bool)
	for _, r := range rows {
		links.ChildIDs = append(links.ChildIDs, r.ChildID)
		if id := model.StrVal(r.CurrentClassID); id != "" && !seen[id] {
			seen[id] = true
			links.ChildClassIDs = append(links.ChildClassIDs, id)
		}
	}
	return links, nil
}
