package chat

import (
	"context"
	"encoding/json"

	"buddies_chat_server/internal/infrastructure/mq"
	"buddies_chat_server/pkg/errorx"
)

// Broadcaster 广播器接口
// Service 层依赖它发事件，不直接接触队列和注册表
type Broadcaster interface {
	// Broadcast 向频道广播一个事件
	Broadcast(ctx context.Context, channel, event string, payload any) error
	// JoinUserChannels 把一批用户的在线连接加入目标频道
	JoinUserChannels(target string, userIds []string)
}

// QueuedBroadcaster 经由事件队列的广播器实现
// 事件先入队（channel 或 kafka 模式），消费端投递到注册表
type QueuedBroadcaster struct {
	queue    mq.EventQueue
	registry *Registry
}

// NewQueuedBroadcaster 创建广播器并启动队列消费循环
func NewQueuedBroadcaster(queue mq.EventQueue, registry *Registry) *QueuedBroadcaster {
	queue.Start(registry)
	return &QueuedBroadcaster{queue: queue, registry: registry}
}

func (b *QueuedBroadcaster) Broadcast(ctx context.Context, channel, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeInvalidParam, "marshal broadcast payload for event %s", event)
	}
	return b.queue.Publish(ctx, mq.Envelope{
		Channel: channel,
		Event:   event,
		Payload: data,
	})
}

func (b *QueuedBroadcaster) JoinUserChannels(target string, userIds []string) {
	b.registry.JoinUserChannels(target, userIds)
}

var _ Broadcaster = (*QueuedBroadcaster)(nil)
