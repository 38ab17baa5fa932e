// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"buddies_chat_server/internal/dao/mysql"
	myredis "buddies_chat_server/internal/dao/redis"
	"buddies_chat_server/internal/service/chat"
	"buddies_chat_server/internal/service/friendship"
	"buddies_chat_server/internal/service/group"
	"buddies_chat_server/internal/service/interest"
	"buddies_chat_server/internal/service/privatechat"
	"buddies_chat_server/internal/service/user"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过 service.Svc 访问各个 Service
type Services struct {
	User        UserService
	Friendship  FriendshipService
	PrivateChat PrivateChatService
	Group       GroupService
	Interest    InterestService
}

// NewServices 创建并注入所有 Service 实例
// store: 数据层聚合；cache: 缓存服务；broadcaster: 广播器
func NewServices(store mysql.Store, cache myredis.AsyncCacheService, broadcaster chat.Broadcaster) *Services {
	return &Services{
		User:        user.NewUserService(store, cache),
		Friendship:  friendship.NewFriendshipService(store, cache, broadcaster),
		PrivateChat: privatechat.NewPrivateChatService(store, cache, broadcaster),
		Group:       group.NewGroupService(store, cache, broadcaster),
		Interest:    interest.NewInterestService(store),
	}
}

// Svc 全局 Services 实例
// Handler 层通过 service.Svc.User.Login() 等方式调用
var Svc *Services

// InitServices 初始化全局 Services 实例，在数据层初始化之后调用
func InitServices(store mysql.Store, cache myredis.AsyncCacheService, broadcaster chat.Broadcaster) {
	Svc = NewServices(store, cache, broadcaster)
}
