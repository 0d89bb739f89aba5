package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/cliffordobure/daycare-sub000/internal/api/middleware"
	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
	"github.com/cliffordobure/daycare-sub000/pkg/jwt"
	"github.com/cliffordobure/daycare-sub000/pkg/response"
)

// MustGetActor 从 Gin 上下文中安全提取当前身份。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetActor(c *gin.Context) (*authz.Actor, bool) {
	v, exists := c.Get(middleware.ActorKey)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	actor, ok := v.(*authz.Actor)
	if !ok || actor == nil || actor.UserID == "" {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return actor, true
}

// MustGetClaims 从 Gin 上下文中安全提取 Token Claims。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.ClaimsKey)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// bindJSON 绑定并校验请求体，失败时写入逐字段错误
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// bindQuery 绑定并校验查询参数
func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}
	response.ValidationFailed(c, dto.FieldErrors(err))
}

// respondError 统一处理业务错误
// 可预期的业务错误原样输出；其余记录到 c.Errors（由日志中间件输出）并隐藏细节
func respondError(c *gin.Context, err error) {
	if appErr, ok := apperrors.As(err); ok && appErr.Kind.Operational() {
		response.AppError(c, appErr)
		return
	}
	_ = c.Error(err)
	response.InternalError(c)
}

// paramID 读取路径中的 :id
func paramID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "ID 不能为空")
		return "", false
	}
	return id, true
}

// sendFile 以附件形式输出文件
func sendFile(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}
