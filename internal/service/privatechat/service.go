// Package privatechat 私聊会话与消息的业务逻辑
// 消息追加和会话最后消息缓存在同一事务里落库，之后才广播
package privatechat

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"buddies_chat_server/internal/dao/mysql"
	myredis "buddies_chat_server/internal/dao/redis"
	"buddies_chat_server/internal/dto/request"
	"buddies_chat_server/internal/dto/respond"
	"buddies_chat_server/internal/model"
	"buddies_chat_server/internal/service/chat"
	"buddies_chat_server/pkg/constants"
	"buddies_chat_server/pkg/errorx"
	"buddies_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

const timeLayout = "2006-01-02 15:04:05"

type privateChatService struct {
	store       mysql.Store
	cache       myredis.AsyncCacheService
	broadcaster chat.Broadcaster
}

// NewPrivateChatService 构造函数
func NewPrivateChatService(store mysql.Store, cache myredis.AsyncCacheService, broadcaster chat.Broadcaster) *privateChatService {
	return &privateChatService{store: store, cache: cache, broadcaster: broadcaster}
}

// findChatForParticipant 查会话并校验参与者身份
// 非参与者统一返回 NotFound，不向外泄露会话是否存在
func (s *privateChatService) findChatForParticipant(ctx context.Context, chatId, userId string) (*model.PrivateChat, error) {
	privateChat, err := s.store.PrivateChats().FindByUuid(ctx, chatId)
	if err != nil {
		return nil, err
	}
	if !privateChat.HasParticipant(userId) {
		return nil, errorx.Newf(errorx.CodeNotFound, "查询私聊会话 uuid=%s", chatId)
	}
	return privateChat, nil
}

// SendMessage 发送私聊消息
// 事务提交后才广播：双方 user 频道各一份，另向会话房间发一份，
// 正在打开会话的连接即时收到，离线用户下次拉取时看到
func (s *privateChatService) SendMessage(ctx context.Context, senderId string, req request.SendMessageRequest) (*respond.MessageRespond, error) {
	privateChat, err := s.findChatForParticipant(ctx, req.ChatId, senderId)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	msg := &model.PrivateChatMessage{
		Uuid:       snowflake.GenerateID(),
		ChatId:     privateChat.Uuid,
		SenderId:   senderId,
		ReceiverId: privateChat.Counterpart(senderId),
		Content:    req.Content,
		SentAt:     now,
		Status:     model.MessageDelivered,
		StatusAt:   now,
	}
	err = s.store.Transaction(ctx, func(tx mysql.Store) error {
		if err := tx.PrivateMessages().Create(ctx, msg); err != nil {
			return err
		}
		return tx.PrivateChats().UpdateLastMessage(ctx, privateChat.Uuid, senderId, req.Content, now)
	})
	if err != nil {
		return nil, err
	}

	// 会话列表缓存失效，异步执行不阻塞发送
	s.invalidateChatList(privateChat.UserOneId, privateChat.UserTwoId)

	rsp := toMessageRespond(msg)
	for _, channel := range []string{
		constants.UserChannelPrefix + privateChat.UserOneId,
		constants.UserChannelPrefix + privateChat.UserTwoId,
		constants.PrivateChannelPrefix + privateChat.Uuid,
	} {
		if err := s.broadcaster.Broadcast(ctx, channel, constants.EventNewPrivateMessage, rsp); err != nil {
			zap.L().Warn("broadcast private message failed",
				zap.Int64("message", msg.Uuid), zap.String("channel", channel), zap.Error(err))
		}
	}
	return rsp, nil
}

// GetMessages 分页拉取会话消息，最新的在前
func (s *privateChatService) GetMessages(ctx context.Context, userId, chatId string, limit, offset int) ([]respond.MessageRespond, error) {
	if _, err := s.findChatForParticipant(ctx, chatId, userId); err != nil {
		return nil, err
	}
	msgs, err := s.store.PrivateMessages().FindPageByChatId(ctx, chatId, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]respond.MessageRespond, 0, len(msgs))
	for i := range msgs {
		out = append(out, *toMessageRespond(&msgs[i]))
	}
	return out, nil
}

// MarkSeen 接收方标记消息已读
// 重复标记是幂等的，返回当前状态
func (s *privateChatService) MarkSeen(ctx context.Context, userId string, req request.MarkSeenRequest) (*respond.MessageRespond, error) {
	msgId, err := strconv.ParseInt(req.MessageId, 10, 64)
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeInvalidParam, "非法的消息 id %s", req.MessageId)
	}
	msg, err := s.store.PrivateMessages().FindByUuid(ctx, msgId)
	if err != nil {
		return nil, err
	}
	// 只有接收方能标记已读，其他人一律当作消息不存在
	if msg.ReceiverId != userId {
		return nil, errorx.Newf(errorx.CodeNotFound, "查询私聊消息 uuid=%d", msgId)
	}
	if msg.Status == model.MessageSeen {
		return toMessageRespond(msg), nil
	}

	now := time.Now()
	if err := s.store.PrivateMessages().UpdateStatus(ctx, msgId, model.MessageSeen, now); err != nil {
		return nil, err
	}
	msg.Status = model.MessageSeen
	msg.StatusAt = now
	return toMessageRespond(msg), nil
}

// ListChats 返回当前用户的会话列表，最近有消息的在前
// 结果短暂缓存，发消息时异步失效
func (s *privateChatService) ListChats(ctx context.Context, userId string) ([]respond.PrivateChatRespond, error) {
	cacheKey := "chat_list_" + userId
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var out []respond.PrivateChatRespond
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return out, nil
		}
	}

	chats, err := s.store.PrivateChats().FindByUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	out := make([]respond.PrivateChatRespond, 0, len(chats))
	for i := range chats {
		out = append(out, *toChatRespond(&chats[i], userId))
	}

	if data, err := json.Marshal(out); err == nil {
		s.cache.SubmitTask(func() {
			if err := s.cache.Set(context.Background(), cacheKey, string(data),
				time.Minute*constants.REDIS_TIMEOUT); err != nil {
				zap.L().Warn("cache chat list failed", zap.String("user", userId), zap.Error(err))
			}
		})
	}
	return out, nil
}

func (s *privateChatService) invalidateChatList(userIds ...string) {
	for _, userId := range userIds {
		key := "chat_list_" + userId
		s.cache.SubmitTask(func() {
			if err := s.cache.Delete(context.Background(), key); err != nil {
				zap.L().Warn("invalidate chat list cache failed", zap.String("key", key), zap.Error(err))
			}
		})
	}
}

func toMessageRespond(msg *model.PrivateChatMessage) *respond.MessageRespond {
	return &respond.MessageRespond{
		Uuid:       strconv.FormatInt(msg.Uuid, 10),
		ChatId:     msg.ChatId,
		SenderId:   msg.SenderId,
		ReceiverId: msg.ReceiverId,
		Content:    msg.Content,
		SentAt:     msg.SentAt.Format(timeLayout),
		Status:     msg.Status,
		StatusAt:   msg.StatusAt.Format(timeLayout),
	}
}

// toChatRespond 按 viewerId 视角填充对端参与者
func toChatRespond(privateChat *model.PrivateChat, viewerId string) *respond.PrivateChatRespond {
	friendId := privateChat.UserOneId
	friendName := privateChat.UserOneName
	if privateChat.UserOneId == viewerId {
		friendId = privateChat.UserTwoId
		friendName = privateChat.UserTwoName
	}
	var lastMsgAt string
	if privateChat.LastMsgAt.Valid {
		lastMsgAt = privateChat.LastMsgAt.Time.Format(timeLayout)
	}
	return &respond.PrivateChatRespond{
		Uuid:            privateChat.Uuid,
		FriendId:        friendId,
		FriendName:      friendName,
		LastMsgSenderId: privateChat.LastMsgSenderId,
		LastMsg:         privateChat.LastMsg,
		LastMsgAt:       lastMsgAt,
		CreatedAt:       privateChat.CreatedAt.Format(timeLayout),
	}
}
