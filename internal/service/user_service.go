package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cliffordobure/daycare-sub000/config"
	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
	"github.com/cliffordobure/daycare-sub000/pkg/notify"
)

// UserService 用户管理业务接口
type UserService interface {
	Create(ctx context.Context, actor *authz.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	GetByID(ctx context.Context, actor *authz.Actor, id string) (*dto.UserResponse, error)
	List(ctx context.Context, actor *authz.Actor, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error
}

type userService struct {
	*core
	cfg *config.AuthConfig
}

// NewUserService 创建 UserService 实例
func NewUserService(c *core, cfg *config.AuthConfig) UserService {
	return &userService{core: c, cfg: cfg}
}

// ──── Create ────

func (s *userService) Create(ctx context.Context, actor *authz.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	centerID := strings.TrimSpace(req.CenterID)
	if !actor.IsSuperAdmin() {
		if centerID != "" && centerID != actor.CenterID {
			return nil, apperrors.ErrAccessDenied
		}
		centerID = actor.CenterID
	}
	if centerID == "" && req.Role != model.RoleAdmin {
		return nil, ErrCenterRequired
	}

	user := &model.User{
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          strings.TrimSpace(req.Phone),
		Role:           req.Role,
		CenterID:       model.StrPtr(centerID),
		EmployeeID:     req.EmployeeID,
		Qualifications: req.Qualifications,
		Occupation:     req.Occupation,
		EmailOptIn:     true,
	}
	user.IsActive = true
	if req.EmailOptIn != nil {
		user.EmailOptIn = *req.EmailOptIn
	}
	if req.SMSOptIn != nil {
		user.SMSOptIn = *req.SMSOptIn
	}

	// 管理员级别：未绑定中心即超级管理员，只有超级管理员能创建
	if req.Role == model.RoleAdmin {
		user.AdminLevel = model.AdminLevelCenter
		if centerID == "" || req.AdminLevel == model.AdminLevelSuper {
			user.AdminLevel = model.AdminLevelSuper
		}
		if user.AdminLevel == model.AdminLevelSuper && !actor.IsSuperAdmin() {
			return nil, apperrors.ErrAccessDenied
		}
		user.CenterAccess = req.CenterAccess
		user.Permissions = req.Permissions
	}
	if err := authorize(actor, authz.UserResource(user), authz.OpCreate); err != nil {
		return nil, err
	}

	if req.HireDate != "" {
		d, err := parseDate("hire_date", req.HireDate)
		if err != nil {
			return nil, err
		}
		user.HireDate = &d
	}
	if centerID != "" {
		if _, err := s.repo.Center.GetByID(ctx, centerID); err != nil {
			return nil, s.lookupErr(err, ErrCenterNotFound, "查询中心失败", zap.String("center_id", centerID))
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return nil, err
	}
	user.PasswordHash = string(hash)
	user.Stamp(actor.UserID, true)

	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, s.userWriteErr(err)
	}

	s.logger.Info("创建用户",
		zap.String("user_id", user.UserID),
		zap.String("role", user.Role),
		zap.String("operator", actor.UserID),
	)
	if user.EmailOptIn {
		s.dispatch.Email(notify.Email{
			To:       user.Email,
			ToName:   user.FullName(),
			Subject:  "欢迎加入",
			Template: "welcome",
			Context:  map[string]any{"name": user.FullName(), "role": user.Role},
		})
	}
	return toUserResponse(user), nil
}

// ──── GetByID ────

func (s *userService) GetByID(ctx context.Context, actor *authz.Actor, id string) (*dto.UserResponse, error) {
	user, err := s.load(ctx, actor, id, authz.OpRead)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	switch user.Role {
	case model.RoleTeacher:
		if ids, err := s.repo.User.AssignedClassIDs(ctx, user.UserID); err == nil {
			resp.AssignedClassIDs = ids
		}
	case model.RoleParent:
		if links, err := s.repo.User.ParentLinks(ctx, user.UserID); err == nil {
			resp.ChildIDs = links.ChildIDs
		}
	}
	return resp, nil
}

// ──── List ────

func (s *userService) List(ctx context.Context, actor *authz.Actor, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	filters := &repository.UserListFilters{
		Search:          req.Search,
		Role:            req.Role,
		CenterID:        centerFilter(actor, req.CenterID),
		IsActive:        req.IsActive,
		IncludeInactive: includeInactive(actor, req.IncludeInactive),
	}
	users, total, err := s.repo.User.List(ctx, authz.ScopeFor(actor, authz.KindUser), filters, pageOf(req.PaginationRequest))
	if err != nil {
		return nil, 0, s.dbErr("查询用户列表失败", err)
	}

	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, *toUserResponse(&users[i]))
	}
	return list, total, nil
}

// ──── Update ────

func (s *userService) Update(ctx context.Context, actor *authz.Actor, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.load(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}

	// 权限/级别只能由管理员修改，超级管理员级别只能由超级管理员授予
	isAdmin := actor.Role == model.RoleAdmin
	if !isAdmin && (req.Permissions != nil || req.AdminLevel != nil || req.EmployeeID != nil) {
		return nil, apperrors.ErrAccessDenied
	}
	if req.AdminLevel != nil && *req.AdminLevel != user.AdminLevel {
		if user.Role != model.RoleAdmin || !actor.IsSuperAdmin() {
			return nil, apperrors.ErrAccessDenied
		}
		user.AdminLevel = *req.AdminLevel
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.EmployeeID != nil {
		user.EmployeeID = *req.EmployeeID
	}
	if req.Qualifications != nil {
		user.Qualifications = req.Qualifications
	}
	if req.Occupation != nil {
		user.Occupation = *req.Occupation
	}
	if req.Permissions != nil {
		user.Permissions = req.Permissions
	}
	if req.EmailOptIn != nil {
		user.EmailOptIn = *req.EmailOptIn
	}
	if req.SMSOptIn != nil {
		user.SMSOptIn = *req.SMSOptIn
	}
	user.Stamp(actor.UserID, false)

	if err := s.repo.User.Update(ctx, user); err != nil {
		return nil, s.userWriteErr(err)
	}
	return toUserResponse(user), nil
}

// ──── SetStatus ────

func (s *userService) SetStatus(ctx context.Context, actor *authz.Actor, id string, active bool) error {
	if !active && id == actor.UserID {
		return ErrSelfDeactivate
	}
	user, err := s.load(ctx, actor, id, authz.OpDelete)
	if err != nil {
		return err
	}
	if active {
		user.Activate(actor.UserID)
	} else {
		user.Deactivate(actor.UserID, s.now())
	}
	if err := s.repo.User.Update(ctx, user); err != nil {
		return s.dbErr("更新用户状态失败", err, zap.String("user_id", id))
	}
	s.logger.Info("更新用户状态",
		zap.String("user_id", id),
		zap.Bool("is_active", active),
		zap.String("operator", actor.UserID),
	)
	return nil
}

func (s *userService) load(ctx context.Context, actor *authz.Actor, id string, op authz.Op) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err, ErrUserNotFound, "查询用户失败", zap.String("user_id", id))
	}
	if err := authorize(actor, authz.UserResource(user), op); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) userWriteErr(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		if strings.Contains(err.Error(), "phone") {
			return ErrPhoneExists
		}
		return ErrEmailExists
	}
	return s.dbErr("保存用户失败", err)
}

func toUserResponse(u *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:             u.UserID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		FullName:       u.FullName(),
		Email:          u.Email,
		Phone:          u.Phone,
		Role:           u.Role,
		CenterID:       model.StrVal(u.CenterID),
		AdminLevel:     u.AdminLevel,
		CenterAccess:   u.CenterAccess,
		EmployeeID:     u.EmployeeID,
		Qualifications: u.Qualifications,
		Occupation:     u.Occupation,
		Permissions:    u.Permissions,
		EmailOptIn:     u.EmailOptIn,
		SMSOptIn:       u.SMSOptIn,
		IsActive:       u.IsActive,
		LastLogin:      u.LastLogin,
		CreatedAt:      u.CreatedAt,
	}
	if u.HireDate != nil {
		resp.HireDate = u.HireDate.Format(dto.DateLayout)
	}
	return resp
}
