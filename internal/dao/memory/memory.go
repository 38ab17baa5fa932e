// Package memory 提供 mysql.Store 的内存实现
// 用于 Service 层测试：不依赖 MySQL，且事务采用 copy-on-commit，
// 可以验证"要么全部可见，要么全部回滚"的原子性语义
package memory

import (
	"context"
	"sync"
	"time"

	"buddies_chat_server/internal/dao/mysql"
	"buddies_chat_server/internal/model"
)

// state 全部表数据的一个快照
type state struct {
	users         []model.UserInfo
	interests     []model.Interest
	userInterests []model.UserInterest
	friendships   []model.FriendshipRequest
	privateChats  []model.PrivateChat
	privateMsgs   []model.PrivateChatMessage
	groups        []model.GroupInfo
	groupMembers  []model.GroupMember
	groupMsgs     []model.GroupMessage
	ratings       []model.Rating
	nextID        uint
}

// clone 复制整个快照，事务在副本上执行
// 模型都是纯值类型，浅拷贝切片即可
func (s *state) clone() *state {
	return &state{
		users:         append([]model.UserInfo(nil), s.users...),
		interests:     append([]model.Interest(nil), s.interests...),
		userInterests: append([]model.UserInterest(nil), s.userInterests...),
		friendships:   append([]model.FriendshipRequest(nil), s.friendships...),
		privateChats:  append([]model.PrivateChat(nil), s.privateChats...),
		privateMsgs:   append([]model.PrivateChatMessage(nil), s.privateMsgs...),
		groups:        append([]model.GroupInfo(nil), s.groups...),
		groupMembers:  append([]model.GroupMember(nil), s.groupMembers...),
		groupMsgs:     append([]model.GroupMessage(nil), s.groupMsgs...),
		ratings:       append([]model.Rating(nil), s.ratings...),
		nextID:        s.nextID,
	}
}

// Store mysql.Store 的内存实现
type Store struct {
	mu sync.RWMutex
	st *state

	// errHooks 按操作名注入错误，用于测试事务回滚
	// 操作名见各 repository 方法里的 takeErr 调用
	errHooks map[string]error
}

// NewStore 创建空的内存 Store
func NewStore() *Store {
	return &Store{
		st:       &state{nextID: 1},
		errHooks: make(map[string]error),
	}
}

// InjectErr 让下一次指定操作返回 err（消费一次后清除）
func (s *Store) InjectErr(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errHooks[op] = err
}

// takeErr 取出并消费指定操作的注入错误
func (s *Store) takeErr(op string) error {
	if err, ok := s.errHooks[op]; ok {
		delete(s.errHooks, op)
		return err
	}
	return nil
}

// assign 为新行分配自增 ID 和创建时间
func (s *Store) assign(createdAt *time.Time, id *uint) {
	*id = s.st.nextID
	s.st.nextID++
	if createdAt.IsZero() {
		*createdAt = time.Now()
	}
}

func (s *Store) Users() mysql.UserRepository                          { return &userRepo{s} }
func (s *Store) Interests() mysql.InterestRepository                  { return &interestRepo{s} }
func (s *Store) Friendships() mysql.FriendshipRepository              { return &friendshipRepo{s} }
func (s *Store) PrivateChats() mysql.PrivateChatRepository            { return &privateChatRepo{s} }
func (s *Store) PrivateMessages() mysql.PrivateChatMessageRepository  { return &privateMsgRepo{s} }
func (s *Store) Groups() mysql.GroupRepository                        { return &groupRepo{s} }
func (s *Store) GroupMembers() mysql.GroupMemberRepository            { return &groupMemberRepo{s} }
func (s *Store) GroupMessages() mysql.GroupMessageRepository          { return &groupMsgRepo{s} }
func (s *Store) Ratings() mysql.RatingRepository                      { return &ratingRepo{s} }

// Transaction copy-on-commit：在快照副本上执行 fn，
// 成功才把副本换入，失败则丢弃副本，外部永远看不到中间态
func (s *Store) Transaction(ctx context.Context, fn func(tx mysql.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{
		st:       s.st.clone(),
		errHooks: s.errHooks, // 共享 hook 表，事务内操作同样可注入失败
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.st = tx.st
	return nil
}
