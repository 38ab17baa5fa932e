// Package mysql 提供 Repository 层聚合与构造
package mysql

import (
	"context"
	"errors"

	"buddies_chat_server/pkg/errorx"

	"gorm.io/gorm"
)

// Repositories 聚合所有 Repository 实例，实现 Store 接口
// 作为依赖注入的入口，Service 层通过 Store 接口访问数据层
type Repositories struct {
	db              *gorm.DB
	users           UserRepository
	interests       InterestRepository
	friendships     FriendshipRepository
	privateChats    PrivateChatRepository
	privateMessages PrivateChatMessageRepository
	groups          GroupRepository
	groupMembers    GroupMemberRepository
	groupMessages   GroupMessageRepository
	ratings         RatingRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:              db,
		users:           &userRepository{db: db},
		interests:       &interestRepository{db: db},
		friendships:     &friendshipRepository{db: db},
		privateChats:    &privateChatRepository{db: db},
		privateMessages: &privateChatMessageRepository{db: db},
		groups:          &groupRepository{db: db},
		groupMembers:    &groupMemberRepository{db: db},
		groupMessages:   &groupMessageRepository{db: db},
		ratings:         &ratingRepository{db: db},
	}
}

func (r *Repositories) Users() UserRepository                        { return r.users }
func (r *Repositories) Interests() InterestRepository               { return r.interests }
func (r *Repositories) Friendships() FriendshipRepository           { return r.friendships }
func (r *Repositories) PrivateChats() PrivateChatRepository         { return r.privateChats }
func (r *Repositories) PrivateMessages() PrivateChatMessageRepository { return r.privateMessages }
func (r *Repositories) Groups() GroupRepository                     { return r.groups }
func (r *Repositories) GroupMembers() GroupMemberRepository         { return r.groupMembers }
func (r *Repositories) GroupMessages() GroupMessageRepository       { return r.groupMessages }
func (r *Repositories) Ratings() RatingRepository                   { return r.ratings }

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// ctx 的 deadline 同样约束事务内的每一条语句
func (r *Repositories) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 使用事务 db 创建新的 Repositories 实例
		return fn(NewRepositories(tx))
	})
}

// ==================== 错误包装辅助函数 ====================

// wrapDBError 包装数据库错误
// 根据错误类型返回不同的错误码：
//   - ErrRecordNotFound -> CodeNotFound
//   - 其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// wrapDBErrorf 包装数据库错误（支持格式化消息）
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}
