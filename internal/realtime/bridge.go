package realtime

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/pkg/redis"
)

// bridgeMessage Redis 频道上的帧
type bridgeMessage struct {
	Origin  string          `json:"origin"`
	Rooms   []Room          `json:"rooms"`
	Center  string          `json:"center,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBridge 通过 Redis 发布订阅在多实例间转发房间事件
// 在线状态仍按实例维护，不跨实例同步
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *zap.Logger
}

// NewRedisBridge 创建桥接并注册到 hub
func NewRedisBridge(client *redis.Client, channel string, hub *Hub, logger *zap.Logger) *RedisBridge {
	b := &RedisBridge{client: client, channel: channel, hub: hub, logger: logger}
	hub.SetBridge(b)
	return b
}

// Publish 发布本实例产生的事件
func (b *RedisBridge) Publish(ctx context.Context, rooms []Room, center string, payload []byte) error {
	msg, err := json.Marshal(bridgeMessage{Origin: b.hub.InstanceID(), Rooms: rooms, Center: center, Payload: payload})
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, msg)
}

// Run 订阅其他实例的事件并投递到本地房间，阻塞直到 ctx 取消
func (b *RedisBridge) Run(ctx context.Context) error {
	b.logger.Info("实时事件 Redis 桥接已启动", zap.String("channel", b.channel))
	return b.client.Subscribe(ctx, b.channel, b.handle)
}

func (b *RedisBridge) handle(raw []byte) {
	var msg bridgeMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		b.logger.Warn("无法解析桥接消息", zap.Error(err))
		return
	}
	if msg.Origin == b.hub.InstanceID() {
		return
	}
	b.hub.deliverLocal(msg.Rooms, msg.Center, msg.Payload)
}
