// Package chat 实现实时投递层：连接注册表、广播器和 websocket 连接
// 注册表只管理本进程的连接，频道成员随连接关闭自动消失
package chat

import (
	"encoding/json"
	"sync"

	"buddies_chat_server/internal/infrastructure/mq"
	"buddies_chat_server/pkg/constants"

	"go.uber.org/zap"
)

// Registry 连接注册表
// 两个映射互为反向索引：channels 按频道找连接做扇出，
// conns 按连接找频道做断开清理，两者在同一把锁下修改
type Registry struct {
	mu       sync.RWMutex
	channels map[string]map[*UserConn]struct{}
	conns    map[*UserConn]map[string]struct{}
}

// NewRegistry 创建空的连接注册表
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]map[*UserConn]struct{}),
		conns:    make(map[*UserConn]map[string]struct{}),
	}
}

// Join 把连接加入频道，重复加入是幂等的
func (r *Registry) Join(channel string, conn *UserConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.channels[channel] == nil {
		r.channels[channel] = make(map[*UserConn]struct{})
	}
	r.channels[channel][conn] = struct{}{}
	if r.conns[conn] == nil {
		r.conns[conn] = make(map[string]struct{})
	}
	r.conns[conn][channel] = struct{}{}
}

// Leave 把连接移出频道，频道空了就回收
func (r *Registry) Leave(channel string, conn *UserConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(channel, conn)
}

func (r *Registry) leaveLocked(channel string, conn *UserConn) {
	if members, ok := r.channels[channel]; ok {
		delete(members, conn)
		if len(members) == 0 {
			delete(r.channels, channel)
		}
	}
	if chans, ok := r.conns[conn]; ok {
		delete(chans, channel)
		if len(chans) == 0 {
			delete(r.conns, conn)
		}
	}
}

// LeaveAll 把连接从它加入的全部频道移出，连接关闭时调用
func (r *Registry) LeaveAll(conn *UserConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for channel := range r.conns[conn] {
		r.leaveLocked(channel, conn)
	}
	delete(r.conns, conn)
}

// JoinUserChannels 把一批用户当前在线的连接加入目标频道
// 建群时调用：群刚建好，在线成员的连接立即开始收群频道的事件
// 用户不在线时没有连接可加，他上线后由客户端重新 join
func (r *Registry) JoinUserChannels(target string, userIds []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, userId := range userIds {
		for conn := range r.channels[constants.UserChannelPrefix+userId] {
			if r.channels[target] == nil {
				r.channels[target] = make(map[*UserConn]struct{})
			}
			r.channels[target][conn] = struct{}{}
			if r.conns[conn] == nil {
				r.conns[conn] = make(map[string]struct{})
			}
			r.conns[conn][target] = struct{}{}
		}
	}
}

// ChannelSize 返回频道当前的连接数，测试用
func (r *Registry) ChannelSize(channel string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[channel])
}

// serverFrame 推送给前端的事件帧
type serverFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Deliver 把信封扇出给频道内的所有连接，实现 mq.Sink
// 空频道是正常情况（没人在线），静默返回
// 单个连接发送缓冲满时丢弃该连接的这一帧，不阻塞其他接收者
func (r *Registry) Deliver(env mq.Envelope) {
	frame, err := json.Marshal(serverFrame{Event: env.Event, Data: env.Payload})
	if err != nil {
		zap.L().Error("marshal server frame", zap.Error(err))
		return
	}

	r.mu.RLock()
	members := make([]*UserConn, 0, len(r.channels[env.Channel]))
	for conn := range r.channels[env.Channel] {
		members = append(members, conn)
	}
	r.mu.RUnlock()

	for _, conn := range members {
		select {
		case conn.SendBack <- frame:
		default:
			zap.L().Warn("connection send buffer full, frame dropped",
				zap.String("user", conn.UserId), zap.String("channel", env.Channel))
		}
	}
}

var _ mq.Sink = (*Registry)(nil)
