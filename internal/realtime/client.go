package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
)

const (
	closeHeartbeatTimeout = websocket.StatusPolicyViolation
	closeGoingAway        = websocket.StatusGoingAway
)

// Client 一条 WebSocket 连接
type Client struct {
	id    string
	hub   *Hub
	conn  *websocket.Conn
	actor *authz.Actor
	rooms []Room

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu            sync.Mutex
	connectedAt   time.Time
	lastHeartbeat time.Time
	status        string
}

func newClient(h *Hub, conn *websocket.Conn, actor *authz.Actor) *Client {
	now := h.now()
	return &Client{
		id:            uuid.New().String(),
		hub:           h,
		conn:          conn,
		actor:         actor,
		rooms:         InterestRooms(actor),
		send:          make(chan []byte, h.sendBuffer),
		done:          make(chan struct{}),
		connectedAt:   now,
		lastHeartbeat: now,
		status:        PresenceOnline,
	}
}

// enqueue 非阻塞入队，缓冲已满或连接已关闭时丢弃
func (c *Client) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		c.hub.logger.Debug("发送缓冲已满，丢弃事件",
			zap.String("conn_id", c.id),
			zap.String("user_id", c.actor.UserID),
		)
		return false
	}
}

func (c *Client) touch() {
	c.mu.Lock()
	c.lastHeartbeat = c.hub.now()
	c.mu.Unlock()
}

func (c *Client) setStatus(status string) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

func (c *Client) lastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastHeartbeat
}

func (c *Client) presence() Presence {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Presence{
		UserID:        c.actor.UserID,
		ConnID:        c.id,
		Role:          c.actor.Role,
		CenterID:      c.actor.CenterID,
		Status:        c.status,
		ConnectedAt:   c.connectedAt,
		LastHeartbeat: c.lastHeartbeat,
		Phone:         c.actor.Phone,
		SMSOptIn:      c.actor.SMSOptIn,
	}
}

func (c *Client) sender() *Sender {
	return &Sender{
		UserID:   c.actor.UserID,
		Role:     c.actor.Role,
		Name:     c.actor.Name,
		CenterID: c.actor.CenterID,
	}
}

func (c *Client) close(code websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close(code, reason)
	})
}

// writeLoop 串行写出发送缓冲
func (c *Client) writeLoop(ctx context.Context, writeTimeout time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case payload := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				c.hub.logger.Debug("写入失败，关闭连接", zap.String("conn_id", c.id), zap.Error(err))
				c.close(websocket.StatusInternalError, "write failed")
				return
			}
		}
	}
}

// readLoop 读取上行事件直到连接关闭，无法解析的帧回复 error 事件
func (c *Client) readLoop(ctx context.Context) {
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		var in Inbound
		if err := json.Unmarshal(data, &in); err != nil || in.Event == "" {
			c.reply(EventError, map[string]string{"message": "无法解析的事件"})
			continue
		}
		c.hub.relay(ctx, c, in)
	}
}

// reply 仅发给当前连接
func (c *Client) reply(event string, data any) {
	env := Envelope{Event: event, Timestamp: c.hub.now().UTC()}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return
		}
		env.Data = raw
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return
	}
	c.enqueue(payload)
}
