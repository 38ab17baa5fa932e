// Package mq 定义广播事件队列
// 广播不直接打到连接注册表上，而是先进入队列、由消费端投递，
// 通过配置在进程内通道和 Kafka 两种实现之间切换
package mq

import (
	"context"
	"encoding/json"
)

// Envelope 广播信封：一个频道上的一次事件
// Payload 保持原始 JSON，队列不关心业务结构
type Envelope struct {
	Channel string          `json:"channel"` // 目标频道，如 user:U241230Ab3dE9xk
	Event   string          `json:"event"`   // 事件名，如 new private chat message
	Payload json.RawMessage `json:"payload"` // 事件数据
}

// Sink 信封的最终去向，由连接注册表实现
// 队列层只需知道"有个东西能投递信封"，不依赖具体注册表
type Sink interface {
	Deliver(env Envelope)
}

// EventQueue 广播事件队列
type EventQueue interface {
	// Publish 把信封放入队列，投递异步进行
	Publish(ctx context.Context, env Envelope) error
	// Start 启动消费循环，把信封送往 sink
	Start(sink Sink)
	// Close 停止消费并释放资源
	Close() error
}
