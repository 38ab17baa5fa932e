// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"buddies_chat_server/internal/service"
	"buddies_chat_server/internal/service/chat"
)

// Handlers 聚合所有 Handler 实例
// 作为依赖注入的入口，Router 层通过此结构访问各个 Handler
type Handlers struct {
	User        *UserHandler
	Friendship  *FriendshipHandler
	PrivateChat *PrivateChatHandler
	Group       *GroupHandler
	Interest    *InterestHandler
	Ws          *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
// svc: Service 层聚合；registry/auth: websocket 连接所需的注册表和频道准入
func NewHandlers(svc *service.Services, registry *chat.Registry, auth chat.ChannelAuthorizer) *Handlers {
	return &Handlers{
		User:        NewUserHandler(svc.User),
		Friendship:  NewFriendshipHandler(svc.Friendship),
		PrivateChat: NewPrivateChatHandler(svc.PrivateChat),
		Group:       NewGroupHandler(svc.Group),
		Interest:    NewInterestHandler(svc.Interest),
		Ws:          NewWsHandler(registry, auth),
	}
}
