// Package realtime WebSocket 实时推送
//
// Hub 由服务进程持有并显式传递，投递语义为至多一次、尽力而为：
// 慢消费者的发送缓冲满时直接丢弃事件。
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/config"
	"github.com/cliffordobure/daycare-sub000/pkg/notify"
)

// 在线状态
const (
	PresenceOnline = "online"
	PresenceAway   = "away"
	PresenceBusy   = "busy"
)

// Presence 注册表中一条连接的快照
type Presence struct {
	UserID        string    `json:"user_id"`
	ConnID        string    `json:"conn_id"`
	Role          string    `json:"role"`
	CenterID      string    `json:"center_id,omitempty"`
	Status        string    `json:"status"`
	ConnectedAt   time.Time `json:"connected_at"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	Phone         string    `json:"-"`
	SMSOptIn      bool      `json:"-"`
}

// Bridge 跨实例转发
type Bridge interface {
	Publish(ctx context.Context, rooms []Room, center string, payload []byte) error
}

// Hub 连接注册表与房间索引
type Hub struct {
	mu    sync.RWMutex
	rooms map[Room]map[*Client]struct{}
	conns map[string]*Client            // connID → client
	users map[string]map[string]*Client // userID → connID → client

	instanceID string
	sendBuffer int
	bridge     Bridge
	sms        notify.SMSSender
	logger     *zap.Logger
	now        func() time.Time
}

// NewHub 创建 Hub
func NewHub(cfg *config.RealtimeConfig, sms notify.SMSSender, logger *zap.Logger) *Hub {
	buf := cfg.SendBuffer
	if buf <= 0 {
		buf = 64
	}
	return &Hub{
		rooms:      make(map[Room]map[*Client]struct{}),
		conns:      make(map[string]*Client),
		users:      make(map[string]map[string]*Client),
		instanceID: uuid.New().String(),
		sendBuffer: buf,
		sms:        sms,
		logger:     logger,
		now:        time.Now,
	}
}

// InstanceID 本实例标识，用于过滤桥接回环
func (h *Hub) InstanceID() string { return h.instanceID }

// SetBridge 启用跨实例转发
func (h *Hub) SetBridge(b Bridge) {
	h.mu.Lock()
	h.bridge = b
	h.mu.Unlock()
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[c.id] = c
	if h.users[c.actor.UserID] == nil {
		h.users[c.actor.UserID] = make(map[string]*Client)
	}
	h.users[c.actor.UserID][c.id] = c
	for _, r := range c.rooms {
		if h.rooms[r] == nil {
			h.rooms[r] = make(map[*Client]struct{})
		}
		h.rooms[r][c] = struct{}{}
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c.id]; !ok {
		return
	}
	delete(h.conns, c.id)
	if byConn := h.users[c.actor.UserID]; byConn != nil {
		delete(byConn, c.id)
		if len(byConn) == 0 {
			delete(h.users, c.actor.UserID)
		}
	}
	for _, r := range c.rooms {
		if members := h.rooms[r]; members != nil {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, r)
			}
		}
	}
}

// Emit 服务端产生的事件，接收范围已由业务层鉴权
func (h *Hub) Emit(event string, data any, rooms ...Room) {
	h.broadcast(event, data, nil, "", rooms)
}

// broadcast center 非空时只投递给该中心的连接及超级管理员
func (h *Hub) broadcast(event string, data any, sender *Sender, center string, rooms []Room) {
	if len(rooms) == 0 {
		return
	}
	env := Envelope{Event: event, Sender: sender, Timestamp: h.now().UTC()}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			h.logger.Error("序列化实时事件失败", zap.String("event", event), zap.Error(err))
			return
		}
		env.Data = raw
	}
	payload, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("序列化实时事件失败", zap.String("event", event), zap.Error(err))
		return
	}

	h.deliverLocal(rooms, center, payload)

	h.mu.RLock()
	bridge := h.bridge
	h.mu.RUnlock()
	if bridge != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := bridge.Publish(ctx, rooms, center, payload); err != nil {
			h.logger.Warn("实时事件桥接失败", zap.String("event", event), zap.Error(err))
		}
	}
}

// deliverLocal 投递到本实例的房间成员，同一连接只投递一次
// center 非空时跳过其他中心的连接
func (h *Hub) deliverLocal(rooms []Room, center string, payload []byte) int {
	h.mu.RLock()
	targets := make(map[*Client]struct{})
	for _, r := range rooms {
		for c := range h.rooms[r] {
			if center != "" && c.actor.CenterID != center && !c.actor.IsSuperAdmin() {
				continue
			}
			targets[c] = struct{}{}
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for c := range targets {
		if c.enqueue(payload) {
			delivered++
		}
	}
	return delivered
}

// Snapshot 当前注册表快照，filter 为空时返回全部
func (h *Hub) Snapshot(filter func(Presence) bool) []Presence {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Presence, 0, len(h.conns))
	for _, c := range h.conns {
		p := c.presence()
		if filter == nil || filter(p) {
			out = append(out, p)
		}
	}
	return out
}

// Online 用户是否存在活跃连接
func (h *Hub) Online(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// Count 当前连接数
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Sweep 剔除心跳超时的连接并关闭，返回剔除数量
func (h *Hub) Sweep(timeout time.Duration) int {
	cutoff := h.now().Add(-timeout)

	h.mu.RLock()
	var stale []*Client
	for _, c := range h.conns {
		if c.lastSeen().Before(cutoff) {
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.unregister(c)
		go c.close(closeHeartbeatTimeout, "heartbeat timeout")
	}
	if len(stale) > 0 {
		h.logger.Info("清理超时连接", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Shutdown 关闭所有连接
func (h *Hub) Shutdown() {
	h.mu.RLock()
	all := make([]*Client, 0, len(h.conns))
	for _, c := range h.conns {
		all = append(all, c)
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.unregister(c)
		c.close(closeGoingAway, "server shutdown")
	}
}
