// Package friendship 好友申请的业务逻辑
// 申请是一条有向边，接受申请与创建私聊会话在同一事务里完成
package friendship

import (
	"context"
	"encoding/json"

	"buddies_chat_server/internal/dao/mysql"
	myredis "buddies_chat_server/internal/dao/redis"
	"buddies_chat_server/internal/dto/request"
	"buddies_chat_server/internal/dto/respond"
	"buddies_chat_server/internal/model"
	"buddies_chat_server/internal/service/chat"
	"buddies_chat_server/pkg/constants"
	"buddies_chat_server/pkg/errorx"
	"buddies_chat_server/pkg/util/random"

	"go.uber.org/zap"
)

const timeLayout = "2006-01-02 15:04:05"

type friendshipService struct {
	store       mysql.Store
	cache       myredis.AsyncCacheService
	broadcaster chat.Broadcaster
}

// NewFriendshipService 构造函数
func NewFriendshipService(store mysql.Store, cache myredis.AsyncCacheService, broadcaster chat.Broadcaster) *friendshipService {
	return &friendshipService{store: store, cache: cache, broadcaster: broadcaster}
}

// SendRequest 发起好友申请
// 建边时拍下双方展示信息、兴趣交集和发起人评分的快照，
// 申请成功后向接收人的 user 频道广播（尽力而为，不影响写结果）
func (s *friendshipService) SendRequest(ctx context.Context, senderId string, req request.SendFriendshipRequest) (*respond.FriendshipRequestRespond, error) {
	if senderId == req.ReceiverId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能向自己发起好友申请")
	}

	// 接收人不存在直接 NotFound
	receiver, err := s.store.Users().FindByUuid(ctx, req.ReceiverId)
	if err != nil {
		return nil, err
	}
	sender, err := s.store.Users().FindByUuid(ctx, senderId)
	if err != nil {
		return nil, err
	}

	// 由全部历史边推导当前关系，已是好友或有未响应申请都算冲突
	rows, err := s.store.Friendships().FindBetween(ctx, senderId, req.ReceiverId)
	if err != nil {
		return nil, err
	}
	rel := Resolve(senderId, rows)
	if rel.AreFriends {
		return nil, errorx.New(errorx.CodeConflict, "双方已是好友")
	}
	if rel.HasSentPending || rel.CanRespond {
		return nil, errorx.New(errorx.CodeConflict, "双方之间已有未响应的申请")
	}

	// 兴趣交集快照
	matching, err := s.matchingInterests(ctx, senderId, req.ReceiverId)
	if err != nil {
		return nil, err
	}
	matchingJSON, err := json.Marshal(matching)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "序列化兴趣交集")
	}

	fr := &model.FriendshipRequest{
		Uuid:              random.FriendshipRequestUuid(),
		SenderId:          sender.Uuid,
		SenderName:        sender.Nickname,
		SenderEmail:       sender.Email,
		ReceiverId:        receiver.Uuid,
		ReceiverName:      receiver.Nickname,
		ReceiverEmail:     receiver.Email,
		Status:            model.FriendshipUnresponded,
		MatchingInterests: string(matchingJSON),
		SenderAvgRating:   sender.AvgRating,
	}
	if err := s.store.Friendships().Create(ctx, fr); err != nil {
		return nil, err
	}

	rsp := toRequestRespond(fr)
	if err := s.broadcaster.Broadcast(ctx, constants.UserChannelPrefix+receiver.Uuid,
		constants.EventNewFriendshipRequest, rsp); err != nil {
		zap.L().Warn("broadcast new friendship request failed",
			zap.String("request", fr.Uuid), zap.Error(err))
	}
	return rsp, nil
}

// ListReceived 查询等待当前用户响应的申请列表
func (s *friendshipService) ListReceived(ctx context.Context, userId string) ([]respond.FriendshipRequestRespond, error) {
	rows, err := s.store.Friendships().FindPendingByReceiver(ctx, userId)
	if err != nil {
		return nil, err
	}
	out := make([]respond.FriendshipRequestRespond, 0, len(rows))
	for i := range rows {
		out = append(out, *toRequestRespond(&rows[i]))
	}
	return out, nil
}

// Respond 响应好友申请
// 接受时状态翻转和会话创建必须同一事务提交：
// 不存在"已接受但没有会话"或"有会话但状态未翻转"的可见状态
func (s *friendshipService) Respond(ctx context.Context, userId string, req request.RespondFriendshipRequest) (*respond.RespondFriendshipRespond, error) {
	fr, err := s.store.Friendships().FindByUuid(ctx, req.RequestId)
	if err != nil {
		return nil, err
	}
	// 非接收人或已被响应的申请一律按不存在处理，不向第三方泄露申请的存在和结果
	if fr.ReceiverId != userId || fr.Status != model.FriendshipUnresponded {
		return nil, errorx.Newf(errorx.CodeNotFound, "查询好友申请 uuid=%s", req.RequestId)
	}

	if req.Action == "reject" {
		fr.Status = model.FriendshipRejected
		if err := s.store.Friendships().Update(ctx, fr); err != nil {
			return nil, err
		}
		return &respond.RespondFriendshipRespond{
			RequestId: fr.Uuid,
			Status:    fr.Status,
		}, nil
	}

	// 接受：翻转状态 + 创建会话，原子提交
	privateChat := &model.PrivateChat{
		Uuid:        random.PrivateChatUuid(),
		UserOneId:   fr.SenderId,
		UserOneName: fr.SenderName,
		UserTwoId:   fr.ReceiverId,
		UserTwoName: fr.ReceiverName,
	}
	err = s.store.Transaction(ctx, func(tx mysql.Store) error {
		fr.Status = model.FriendshipAccepted
		if err := tx.Friendships().Update(ctx, fr); err != nil {
			return err
		}
		return tx.PrivateChats().Create(ctx, privateChat)
	})
	if err != nil {
		return nil, err
	}

	// 双方的会话列表缓存失效，异步执行
	for _, uid := range []string{fr.SenderId, fr.ReceiverId} {
		key := "chat_list_" + uid
		s.cache.SubmitTask(func() {
			if err := s.cache.Delete(context.Background(), key); err != nil {
				zap.L().Warn("invalidate chat list cache failed", zap.String("key", key), zap.Error(err))
			}
		})
	}

	// 向双方的 user 频道广播新会话，各按对方视角填充 Friend 字段
	s.broadcastNewChat(ctx, privateChat, fr.SenderId)
	s.broadcastNewChat(ctx, privateChat, fr.ReceiverId)

	return &respond.RespondFriendshipRespond{
		RequestId: fr.Uuid,
		Status:    fr.Status,
		Chat:      toChatRespond(privateChat, userId),
	}, nil
}

func (s *friendshipService) broadcastNewChat(ctx context.Context, privateChat *model.PrivateChat, viewerId string) {
	err := s.broadcaster.Broadcast(ctx, constants.UserChannelPrefix+viewerId,
		constants.EventNewPrivateChat, toChatRespond(privateChat, viewerId))
	if err != nil {
		zap.L().Warn("broadcast new private chat failed",
			zap.String("chat", privateChat.Uuid), zap.String("user", viewerId), zap.Error(err))
	}
}

// matchingInterests 计算两个用户兴趣快照的交集
func (s *friendshipService) matchingInterests(ctx context.Context, userOneId, userTwoId string) ([]model.InterestSnapshot, error) {
	one, err := s.store.Interests().FindByUser(ctx, userOneId)
	if err != nil {
		return nil, err
	}
	two, err := s.store.Interests().FindByUser(ctx, userTwoId)
	if err != nil {
		return nil, err
	}
	other := make(map[string]struct{}, len(two))
	for i := range two {
		other[two[i].InterestUuid] = struct{}{}
	}
	matching := make([]model.InterestSnapshot, 0)
	for i := range one {
		if _, ok := other[one[i].InterestUuid]; ok {
			matching = append(matching, model.InterestSnapshot{
				Uuid: one[i].InterestUuid,
				Name: one[i].InterestName,
			})
		}
	}
	return matching, nil
}

func toRequestRespond(fr *model.FriendshipRequest) *respond.FriendshipRequestRespond {
	var snapshots []model.InterestSnapshot
	if fr.MatchingInterests != "" {
		if err := json.Unmarshal([]byte(fr.MatchingInterests), &snapshots); err != nil {
			zap.L().Warn("unmarshal matching interests snapshot failed",
				zap.String("request", fr.Uuid), zap.Error(err))
		}
	}
	matching := make([]respond.InterestRespond, 0, len(snapshots))
	for _, snap := range snapshots {
		matching = append(matching, respond.InterestRespond{Uuid: snap.Uuid, Name: snap.Name})
	}

	var senderAvg *float64
	if fr.SenderAvgRating.Valid {
		v := fr.SenderAvgRating.Float64
		senderAvg = &v
	}

	return &respond.FriendshipRequestRespond{
		Uuid:              fr.Uuid,
		SenderId:          fr.SenderId,
		SenderName:        fr.SenderName,
		SenderEmail:       fr.SenderEmail,
		SenderAvgRating:   senderAvg,
		ReceiverId:        fr.ReceiverId,
		ReceiverName:      fr.ReceiverName,
		Status:            fr.Status,
		MatchingInterests: matching,
		CreatedAt:         fr.CreatedAt.Format(timeLayout),
	}
}

// toChatRespond 按 viewerId 视角把会话转为响应，Friend 为对端参与者
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
