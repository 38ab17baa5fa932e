// Package mysql 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
//
// 所有方法都带 context.Context：调用方给定的 deadline 能中止底层查询，
// 事务（unit-of-work）同样受 ctx 约束
package mysql

import (
	"context"
	"database/sql"
	"time"

	"buddies_chat_server/internal/model"
)

// Store 聚合所有 Repository，并提供事务执行入口
// Service 层依赖此接口而非具体 *Repositories，便于用内存实现做测试
type Store interface {
	Users() UserRepository
	Interests() InterestRepository
	Friendships() FriendshipRepository
	PrivateChats() PrivateChatRepository
	PrivateMessages() PrivateChatMessageRepository
	Groups() GroupRepository
	GroupMembers() GroupMemberRepository
	GroupMessages() GroupMessageRepository
	Ratings() RatingRepository

	// Transaction 在一个数据库事务中执行 fn
	// fn 内的所有写要么全部可见，要么全部回滚；并发读永远看不到中间态
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.UserInfo) error
	FindByUuid(ctx context.Context, uuid string) (*model.UserInfo, error)
	FindByEmail(ctx context.Context, email string) (*model.UserInfo, error)
	FindByUuids(ctx context.Context, uuids []string) ([]model.UserInfo, error)
	// UpdateRating 回写评分聚合缓存
	UpdateRating(ctx context.Context, uuid string, avg sql.NullFloat64, raterCnt int) error
	// FindSuggested 查找与指定用户至少有一个共同兴趣的其他用户，按共同兴趣数倒序
	FindSuggested(ctx context.Context, userUuid string, interestUuids []string) ([]model.SuggestedUser, error)
}

// InterestRepository 兴趣标签数据访问接口
type InterestRepository interface {
	Create(ctx context.Context, interest *model.Interest) error
	FindAll(ctx context.Context) ([]model.Interest, error)
	FindByUuids(ctx context.Context, uuids []string) ([]model.Interest, error)
	// CreateUserInterests 写入注册时拍下的用户兴趣快照
	CreateUserInterests(ctx context.Context, rows []model.UserInterest) error
	FindByUser(ctx context.Context, userUuid string) ([]model.UserInterest, error)
}

// FriendshipRepository 好友申请（有向边）数据访问接口
type FriendshipRepository interface {
	Create(ctx context.Context, req *model.FriendshipRequest) error
	Update(ctx context.Context, req *model.FriendshipRequest) error
	FindByUuid(ctx context.Context, uuid string) (*model.FriendshipRequest, error)
	// FindBetween 返回两人之间的全部历史边（双向、所有状态），按创建时间升序
	FindBetween(ctx context.Context, userOneId, userTwoId string) ([]model.FriendshipRequest, error)
	// FindPendingByReceiver 查找指定接收人的全部未响应申请
	FindPendingByReceiver(ctx context.Context, receiverId string) ([]model.FriendshipRequest, error)
	// FindAcceptedBetween 查找两人之间任意方向的 accepted 边
	FindAcceptedBetween(ctx context.Context, userOneId, userTwoId string) (*model.FriendshipRequest, error)
}

// PrivateChatRepository 私聊会话数据访问接口
type PrivateChatRepository interface {
	Create(ctx context.Context, chat *model.PrivateChat) error
	FindByUuid(ctx context.Context, uuid string) (*model.PrivateChat, error)
	// FindByUser 返回用户参与的全部会话，按最后消息时间倒序
	FindByUser(ctx context.Context, userId string) ([]model.PrivateChat, error)
	// CountBetweenUserAndUsers 统计 userId 与 others 中多少人之间存在会话
	// 会话存在即是好友关系的证明，建群校验依赖它
	CountBetweenUserAndUsers(ctx context.Context, userId string, others []string) (int64, error)
	// UpdateLastMessage 更新最后消息缓存
	UpdateLastMessage(ctx context.Context, uuid, senderId, content string, at time.Time) error
}

// PrivateChatMessageRepository 私聊消息数据访问接口
type PrivateChatMessageRepository interface {
	Create(ctx context.Context, msg *model.PrivateChatMessage) error
	FindByUuid(ctx context.Context, uuid int64) (*model.PrivateChatMessage, error)
	// FindPageByChatId 按发送时间倒序分页：先 offset 再 limit，最新的页在前
	FindPageByChatId(ctx context.Context, chatId string, limit, offset int) ([]model.PrivateChatMessage, error)
	UpdateStatus(ctx context.Context, uuid int64, status string, at time.Time) error
}

// GroupRepository 群组数据访问接口
type GroupRepository interface {
	Create(ctx context.Context, group *model.GroupInfo) error
	FindByUuid(ctx context.Context, uuid string) (*model.GroupInfo, error)
	FindByUuids(ctx context.Context, uuids []string) ([]model.GroupInfo, error)
	UpdateLastMessage(ctx context.Context, uuid, senderId, content string, at time.Time) error
}

// GroupMemberRepository 群成员数据访问接口
type GroupMemberRepository interface {
	CreateBatch(ctx context.Context, members []model.GroupMember) error
	FindByGroupUuid(ctx context.Context, groupUuid string) ([]model.GroupMember, error)
	FindGroupUuidsByUser(ctx context.Context, userUuid string) ([]string, error)
}

// GroupMessageRepository 群消息数据访问接口
type GroupMessageRepository interface {
	Create(ctx context.Context, msg *model.GroupMessage) error
	FindPageByGroupId(ctx context.Context, groupId string, limit, offset int) ([]model.GroupMessage, error)
}

// RatingRepository 评分数据访问接口
type RatingRepository interface {
	FindByRaterAndRated(ctx context.Context, raterId, ratedId string) (*model.Rating, error)
	Create(ctx context.Context, rating *model.Rating) error
	Update(ctx context.Context, rating *model.Rating) error
	// AggregateByRated 对被评人的全部评分行求均值和行数
	AggregateByRated(ctx context.Context, ratedId string) (avg float64, cnt int64, err error)
}
