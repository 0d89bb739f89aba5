package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
	"github.com/cliffordobure/daycare-sub000/pkg/jwt"
	"github.com/cliffordobure/daycare-sub000/pkg/response"
)

// 上下文键
const (
	ActorKey  = "actor"
	ClaimsKey = "claims"
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// Authenticator 校验 Access Token 并加载当前身份（service.AuthService 实现）
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*authz.Actor, *jwt.Claims, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取 Access Token，
// 签名、类型、黑名单、账号状态与改密时间均由 Authenticator 校验
func JWTAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		actor, claims, err := auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			if appErr, ok := apperrors.As(err); ok && appErr.Kind.Operational() {
				response.AppError(c, appErr)
			} else {
				_ = c.Error(err)
				response.Unauthorized(c, 10002, "Token 无效或已过期")
			}
			c.Abort()
			return
		}

		// 将用户信息注入上下文
		c.Set(ActorKey, actor)
		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, actor.UserID)
		c.Set(RoleKey, actor.Role)

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一；细粒度的租户校验在 Service 层完成
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(RoleKey)
		if !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
