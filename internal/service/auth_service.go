package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cliffordobure/daycare-sub000/config"
	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/pkg/jwt"
)

// TokenBlacklist 已注销 Token 的存储（pkg/redis.Client 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	Me(ctx context.Context, actor *authz.Actor) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, actor *authz.Actor, req *dto.ChangePasswordRequest) error
	// Authenticate 校验 Access Token 并加载当前身份
	Authenticate(ctx context.Context, token string) (*authz.Actor, *jwt.Claims, error)
	// AuthenticateToken 供 WebSocket 握手使用
	AuthenticateToken(ctx context.Context, token string) (*authz.Actor, error)
}

type authService struct {
	*core
	cfg       *config.AuthConfig
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
}

// NewAuthService 创建 AuthService 实例，blacklist 可为 nil（未启用 Redis）
func NewAuthService(
	c *core,
	cfg *config.AuthConfig,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
) AuthService {
	return &authService{
		core:      c,
		cfg:       cfg,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
	}
}

// ──── Login ────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 按邮箱查找所有中心内的账号
	users, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, s.dbErr("查询用户失败", err)
	}
	if code := strings.TrimSpace(req.CenterCode); code != "" {
		users = filterByCenterCode(users, code)
	}

	// 2. 验证密码，多中心同邮箱时按密码缩小候选
	var matched []model.User
	for _, u := range users {
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) == nil {
			matched = append(matched, u)
		}
	}
	switch {
	case len(matched) == 0:
		return nil, ErrInvalidCredentials
	case len(matched) > 1:
		return nil, ErrCenterAmbiguous
	}
	user := &matched[0]

	// 3. 校验账号状态（密码正确后才区分停用）
	if !user.IsActive || (user.Center != nil && !user.Center.IsActive) {
		return nil, ErrAccountDisabled
	}

	// 4. 签发 Token 并记录登录时间
	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.repo.User.TouchLogin(ctx, user.UserID, now); err != nil {
		s.logger.Warn("更新登录时间失败", zap.String("user_id", user.UserID), zap.Error(err))
	}
	resp.User.LastLogin = &now

	s.logger.Info("用户登录", zap.String("user_id", user.UserID), zap.String("role", user.Role))
	return resp, nil
}

func filterByCenterCode(users []model.User, code string) []model.User {
	out := users[:0:0]
	for _, u := range users {
		if u.Center != nil && strings.EqualFold(u.Center.Code, code) {
			out = append(out, u)
		}
	}
	return out
}

// ──── Refresh ────

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if s.revoked(ctx, claims.ID) {
		return nil, ErrTokenRevoked
	}

	user, err := s.loadTokenUser(ctx, claims)
	if err != nil {
		return nil, err
	}

	// 刷新即轮换，旧 Refresh Token 作废
	s.revoke(ctx, claims)
	return s.issueTokens(ctx, user)
}

// ──── Logout ────

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil {
		return nil
	}
	s.revoke(ctx, claims)
	s.logger.Info("用户登出", zap.String("user_id", claims.UserID))
	return nil
}

// ──── Me ────

func (s *authService) Me(ctx context.Context, actor *authz.Actor) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, s.lookupErr(err, ErrUserNotFound, "查询用户失败", zap.String("user_id", actor.UserID))
	}
	resp := toUserResponse(user)
	resp.AssignedClassIDs = actor.AssignedClassIDs
	resp.ChildIDs = actor.ChildIDs
	return resp, nil
}

// ──── ChangePassword ────

func (s *authService) ChangePassword(ctx context.Context, actor *authz.Actor, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, actor.UserID)
	if err != nil {
		return s.lookupErr(err, ErrUserNotFound, "查询用户失败", zap.String("user_id", actor.UserID))
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		return ErrPasswordIncorrect
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return err
	}
	user.PasswordHash = string(hash)
	// 改密之前签发的 Token 全部失效
	user.MarkPasswordChanged(s.now())
	user.Stamp(actor.UserID, false)

	if err := s.repo.User.Update(ctx, user); err != nil {
		return s.dbErr("更新密码失败", err, zap.String("user_id", user.UserID))
	}
	s.logger.Info("用户修改密码", zap.String("user_id", user.UserID))
	return nil
}

// ──── Authenticate ────

func (s *authService) Authenticate(ctx context.Context, token string) (*authz.Actor, *jwt.Claims, error) {
	claims, err := s.jwtMgr.ParseAccessToken(token)
	if err != nil {
		return nil, nil, ErrTokenInvalid
	}
	if s.revoked(ctx, claims.ID) {
		return nil, nil, ErrTokenRevoked
	}

	user, err := s.loadTokenUser(ctx, claims)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.buildActor(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return actor, claims, nil
}

func (s *authService) AuthenticateToken(ctx context.Context, token string) (*authz.Actor, error) {
	actor, _, err := s.Authenticate(ctx, token)
	return actor, err
}

// loadTokenUser 重新读取 Token 主体，停用或改密后签发的 Token 视为失效
func (s *authService) loadTokenUser(ctx context.Context, claims *jwt.Claims) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, s.lookupErr(err, ErrTokenInvalid, "查询用户失败", zap.String("user_id", claims.UserID))
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	if user.ChangedPasswordAfter(claims.IssuedAt.Time) {
		return nil, ErrTokenRevoked
	}
	return user, nil
}

// buildActor 每次请求重新加载关系，分班或亲子关系变更立即生效
func (s *authService) buildActor(ctx context.Context, user *model.User) (*authz.Actor, error) {
	actor := &authz.Actor{
		UserID:       user.UserID,
		Role:         user.Role,
		CenterID:     model.StrVal(user.CenterID),
		AdminLevel:   user.AdminLevel,
		Name:         user.FullName(),
		Phone:        user.Phone,
		SMSOptIn:     user.SMSOptIn,
		CenterAccess: user.CenterAccess,
		Permissions:  user.Permissions,
	}

	switch user.Role {
	case model.RoleTeacher:
		ids, err := s.repo.User.AssignedClassIDs(ctx, user.UserID)
		if err != nil {
			return nil, s.dbErr("查询教师班级失败", err, zap.String("user_id", user.UserID))
		}
		actor.AssignedClassIDs = ids
	case model.RoleParent:
		links, err := s.repo.User.ParentLinks(ctx, user.UserID)
		if err != nil {
			return nil, s.dbErr("查询家长关系失败", err, zap.String("user_id", user.UserID))
		}
		actor.ChildIDs = links.ChildIDs
		actor.ChildClassIDs = links.ChildClassIDs
	}
	return actor, nil
}

func (s *authService) issueTokens(ctx context.Context, user *model.User) (*dto.TokenResponse, error) {
	centerID := model.StrVal(user.CenterID)
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role, centerID)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, centerID)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *toUserResponse(user),
	}
	if actor, err := s.buildActor(ctx, user); err == nil {
		resp.User.AssignedClassIDs = actor.AssignedClassIDs
		resp.User.ChildIDs = actor.ChildIDs
	}
	return resp, nil
}

// revoked 黑名单不可用时放行并告警
func (s *authService) revoked(ctx context.Context, jti string) bool {
	if s.blacklist == nil || jti == "" {
		return false
	}
	hit, err := s.blacklist.IsBlacklisted(ctx, jti)
	if err != nil {
		s.logger.Warn("查询 Token 黑名单失败", zap.Error(err))
		return false
	}
	return hit
}

func (s *authService) revoke(ctx context.Context, claims *jwt.Claims) {
	if s.blacklist == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("写入 Token 黑名单失败", zap.String("user_id", claims.UserID), zap.Error(err))
	}
}
