package mq

import (
	"context"
	"sync"

	"buddies_chat_server/pkg/constants"
	"buddies_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// ChannelQueue 进程内通道实现，默认模式
// 单机部署下信封不出进程，零外部依赖
type ChannelQueue struct {
	ch      chan Envelope
	done    chan struct{}
	closeMu sync.Once
}

// NewChannelQueue 创建进程内事件队列
func NewChannelQueue() *ChannelQueue {
	return &ChannelQueue{
		ch:   make(chan Envelope, constants.CHANNEL_SIZE),
		done: make(chan struct{}),
	}
}

// Publish 把信封放入缓冲通道
// 队列满时丢弃并记日志，广播是尽力而为的通知，不保证必达
func (q *ChannelQueue) Publish(ctx context.Context, env Envelope) error {
	select {
	case q.ch <- env:
		return nil
	case <-ctx.Done():
		return errorx.Wrap(ctx.Err(), errorx.CodeServerBusy, "publish broadcast envelope")
	default:
		zap.L().Warn("broadcast queue full, envelope dropped",
			zap.String("channel", env.Channel), zap.String("event", env.Event))
		return nil
	}
}

// Start 启动消费循环
func (q *ChannelQueue) Start(sink Sink) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("channel queue consumer panic", zap.Any("recover", r))
			}
		}()
		for {
			select {
			case env := <-q.ch:
				sink.Deliver(env)
			case <-q.done:
				return
			}
		}
	}()
}

// Close 停止消费循环
func (q *ChannelQueue) Close() error {
	q.closeMu.Do(func() { close(q.done) })
	return nil
}

var _ EventQueue = (*ChannelQueue)(nil)
