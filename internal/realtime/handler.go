package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/config"
	"github.com/cliffordobure/daycare-sub000/internal/authz"
)

// Authenticator 将握手携带的 access token 解析为 Actor
type Authenticator interface {
	AuthenticateToken(ctx context.Context, token string) (*authz.Actor, error)
}

// Handler WebSocket 握手入口
type Handler struct {
	hub          *Hub
	auth         Authenticator
	origins      []string
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewHandler 创建握手处理器
func NewHandler(hub *Hub, auth Authenticator, cfg *config.RealtimeConfig, logger *zap.Logger) *Handler {
	wt := cfg.WriteTimeout
	if wt <= 0 {
		wt = 5 * time.Second
	}
	return &Handler{
		hub:          hub,
		auth:         auth,
		origins:      cfg.AllowedOrigins,
		writeTimeout: wt,
		logger:       logger,
	}
}

// ServeHTTP 握手鉴权失败在升级前返回 401
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := tokenFromRequest(r)
	if token == "" {
		unauthorized(w, "缺少认证 Token")
		return
	}
	actor, err := h.auth.AuthenticateToken(r.Context(), token)
	if err != nil {
		unauthorized(w, "Token 无效或已过期")
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.logger.Debug("WebSocket 升级失败", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := newClient(h.hub, conn, actor)
	h.hub.register(c)
	defer func() {
		h.hub.unregister(c)
		c.close(websocket.StatusNormalClosure, "closed")
		h.logger.Debug("WebSocket 断开", zap.String("conn_id", c.id), zap.String("user_id", actor.UserID))
	}()

	c.reply(EventConnected, map[string]any{"conn_id": c.id, "rooms": c.rooms})
	h.logger.Debug("WebSocket 已连接",
		zap.String("conn_id", c.id),
		zap.String("user_id", actor.UserID),
		zap.Int("rooms", len(c.rooms)),
	)

	go c.writeLoop(ctx, h.writeTimeout)
	c.readLoop(ctx)
}

func tokenFromRequest(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "error",
		"code":    10002,
		"message": message,
	})
}
