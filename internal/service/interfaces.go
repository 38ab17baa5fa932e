// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"context"

	"buddies_chat_server/internal/dto/request"
	"buddies_chat_server/internal/dto/respond"
)

// UserService 用户业务接口
// 处理注册、登录、令牌刷新、主页、推荐和评分
type UserService interface {
	// Register 用户注册
	Register(ctx context.Context, req request.RegisterRequest) (*respond.RegisterRespond, error)
	// Login 密码登录
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
	// RefreshToken 刷新令牌（轮换）
	RefreshToken(ctx context.Context, req request.RefreshTokenRequest) (*respond.RefreshTokenRespond, error)
	// GetUserInfo 用户主页，按查看者视角附带关系标志位
	GetUserInfo(ctx context.Context, viewerId, targetUuid string) (*respond.GetUserInfoRespond, error)
	// GetSuggestedUsers 好友推荐，按共同兴趣数倒序
	GetSuggestedUsers(ctx context.Context, userId string) ([]respond.SuggestedUserRespond, error)
	// RateUser 好友评分，覆盖式
	RateUser(ctx context.Context, raterId string, req request.RateUserRequest) (*respond.RateUserRespond, error)
}

// FriendshipService 好友申请业务接口
type FriendshipService interface {
	// SendRequest 发起好友申请
	SendRequest(ctx context.Context, senderId string, req request.SendFriendshipRequest) (*respond.FriendshipRequestRespond, error)
	// ListReceived 查询等待当前用户响应的申请
	ListReceived(ctx context.Context, userId string) ([]respond.FriendshipRequestRespond, error)
	// Respond 响应好友申请，接受时原子创建私聊会话
	Respond(ctx context.Context, userId string, req request.RespondFriendshipRequest) (*respond.RespondFriendshipRespond, error)
}

// PrivateChatService 私聊业务接口
type PrivateChatService interface {
	// SendMessage 发送私聊消息
	SendMessage(ctx context.Context, senderId string, req request.SendMessageRequest) (*respond.MessageRespond, error)
	// GetMessages 分页拉取会话消息，最新的在前
	GetMessages(ctx context.Context, userId, chatId string, limit, offset int) ([]respond.MessageRespond, error)
	// MarkSeen 接收方标记消息已读
	MarkSeen(ctx context.Context, userId string, req request.MarkSeenRequest) (*respond.MessageRespond, error)
	// ListChats 会话列表
	ListChats(ctx context.Context, userId string) ([]respond.PrivateChatRespond, error)
}

// GroupService 群组业务接口
type GroupService interface {
	// CreateGroup 创建群组，成员必须全部是建群人的好友
	CreateGroup(ctx context.Context, ownerId string, req request.CreateGroupRequest) (*respond.GroupRespond, error)
	// SendGroupMessage 发送群消息
	SendGroupMessage(ctx context.Context, senderId string, req request.SendGroupMessageRequest) (*respond.GroupMessageRespond, error)
	// GetGroupMessages 分页拉取群消息，最新的在前
	GetGroupMessages(ctx context.Context, userId, groupId string, limit, offset int) ([]respond.GroupMessageRespond, error)
	// ListGroups 当前用户加入的群列表
	ListGroups(ctx context.Context, userId string) ([]respond.GroupRespond, error)
}

// InterestService 兴趣标签业务接口
type InterestService interface {
	// ListInterests 全部兴趣标签
	ListInterests(ctx context.Context) ([]respond.InterestRespond, error)
	// SeedInterests 幂等写入预置标签
	SeedInterests(ctx context.Context, names []string) error
}
