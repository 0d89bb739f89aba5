package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cliffordobure/daycare-sub000/config"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

const minPasswordLen = 8

var ErrPasswordTooShort = invalidField("password", "密码至少 8 位")

// SuperAdminInput 创建超级管理员参数
type SuperAdminInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// OperatorService 运维命令使用，不经过 HTTP 鉴权
type OperatorService interface {
	CreateSuperAdmin(ctx context.Context, in *SuperAdminInput) (*dto.UserResponse, error)
	// ResetPassword 重置密码并使已签发 Token 失效；centerCode 为空时匹配未绑定中心的账号或唯一账号
	ResetPassword(ctx context.Context, email, centerCode, password string) error
}

type operatorService struct {
	*core
	cfg *config.AuthConfig
}

// NewOperatorService 创建 OperatorService
func NewOperatorService(c *core, cfg *config.AuthConfig) OperatorService {
	return &operatorService{core: c, cfg: cfg}
}

func (s *operatorService) CreateSuperAdmin(ctx context.Context, in *SuperAdminInput) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, invalidField("email", "邮箱格式不正确")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, invalidField("first_name", "必填")
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		AdminLevel:   model.AdminLevelSuper,
		EmailOptIn:   true,
	}
	user.IsActive = true

	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, (&userService{core: s.core}).userWriteErr(err)
	}

	s.logger.Info("创建超级管理员", zap.String("user_id", user.UserID), zap.String("email", email))
	return toUserResponse(user), nil
}

func (s *operatorService) ResetPassword(ctx context.Context, email, centerCode, password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}

	users, err := s.repo.User.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return s.dbErr("查询用户失败", err)
	}
	if code := strings.TrimSpace(centerCode); code != "" {
		users = filterByCenterCode(users, code)
	} else if len(users) > 1 {
		if own := withoutCenter(users); len(own) == 1 {
			users = own
		}
	}
	switch {
	case len(users) == 0:
		return ErrUserNotFound
	case len(users) > 1:
		return ErrCenterAmbiguous
	}

	user := &users[0]
	user.PasswordHash = hash
	user.MarkPasswordChanged(s.now())
	if err := s.repo.User.Update(ctx, user); err != nil {
		return s.dbErr("重置密码失败", err, zap.String("user_id", user.UserID))
	}

	s.logger.Info("重置密码", zap.String("user_id", user.UserID))
	return nil
}

func (s *operatorService) hash(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func withoutCenter(users []model.User) []model.User {
	out := users[:0:0]
	for _, u := range users {
		if model.StrVal(u.CenterID) == "" {
			out = append(out, u)
		}
	}
	return out
}
