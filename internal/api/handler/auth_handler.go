package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cliffordobure/daycare-sub000/config"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/service"
	"github.com/cliffordobure/daycare-sub000/pkg/response"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/auth"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	cfg     *config.Config
}

// NewAuthHandler 创建 AuthHandler
// cfg 为 nil 时不写入 Refresh Token Cookie
func NewAuthHandler(authSvc service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, cfg: cfg}
}

// Login 用户登录
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.OK(c, result)
}

// Refresh 刷新 Token（请求体或 Cookie 携带 Refresh Token）
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie != "" && c.Request.ContentLength == 0 {
		req.RefreshToken = cookie
	} else if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.OK(c, result)
}

// Logout 用户登出，当前 Access Token 加入黑名单
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	response.OKMessage(c, "已退出登录", nil)
}

// Me 获取当前用户信息
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, user)
}

// ChangePassword 修改密码，已签发的 Token 随之失效
// PUT /api/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), actor, &req); err != nil {
		respondError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	response.OKMessage(c, "密码已修改，请重新登录", nil)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	if h.cfg == nil || token == "" {
		return
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, int(h.cfg.Auth.RefreshTokenTTL.Seconds()), refreshCookiePath, "", h.secureCookie(), true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	if h.cfg == nil {
		return
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", h.secureCookie(), true)
}

func (h *AuthHandler) secureCookie() bool {
	return strings.HasPrefix(h.cfg.Server.BaseURL, "https://")
}
