// Package group 群组的业务逻辑
// 成员在建群时一次性固定，好友关系由私聊会话的存在证明
package group

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
	"buddies_chat_server/pkg/util/random"
	"buddies_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

const timeLayout = "2006-01-02 15:04:05"

type groupService struct {
	store       mysql.Store
	cache       myredis.AsyncCacheService
	broadcaster chat.Broadcaster
}

// NewGroupService 构造函数
func NewGroupService(store mysql.Store, cache myredis.AsyncCacheService, broadcaster chat.Broadcaster) *groupService {
	return &groupService{store: store, cache: cache, broadcaster: broadcaster}
}

// CreateGroup 创建群组
// 全员好友校验：建群人与每个成员之间都必须存在私聊会话，
// 任何一人不满足则整个操作失败，不留下部分成员的群
func (s *groupService) CreateGroup(ctx context.Context, ownerId string, req request.CreateGroupRequest) (*respond.GroupRespond, error) {
	owner, err := s.store.Users().FindByUuid(ctx, ownerId)
	if err != nil {
		return nil, err
	}

	// 去重，建群人不允许出现在成员列表里
	memberIds := make([]string, 0, len(req.MemberIds))
	seen := make(map[string]struct{}, len(req.MemberIds))
	for _, id := range req.MemberIds {
		if id == ownerId {
			return nil, errorx.New(errorx.CodeInvalidParam, "成员列表不能包含建群人自己")
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		memberIds = append(memberIds, id)
	}

	// 会话存在即好友，数量对不上说明有人不是好友
	cnt, err := s.store.PrivateChats().CountBetweenUserAndUsers(ctx, ownerId, memberIds)
	if err != nil {
		return nil, err
	}
	if cnt != int64(len(memberIds)) {
		return nil, errorx.New(errorx.CodeUnprocessable, "群成员必须全部是建群人的好友")
	}

	users, err := s.store.Users().FindByUuids(ctx, memberIds)
	if err != nil {
		return nil, err
	}
	if len(users) != len(memberIds) {
		return nil, errorx.New(errorx.CodeUnprocessable, "群成员中存在无效用户")
	}

	groupInfo := &model.GroupInfo{
		Uuid:      random.GroupUuid(),
		Name:      req.Name,
		Notice:    req.Notice,
		OwnerId:   owner.Uuid,
		OwnerName: owner.Nickname,
		MemberCnt: len(memberIds) + 1,
	}
	members := make([]model.GroupMember, 0, len(users)+1)
	members = append(members, model.GroupMember{
		GroupUuid: groupInfo.Uuid,
		UserUuid:  owner.Uuid,
		UserName:  owner.Nickname,
		UserEmail: owner.Email,
		Avatar:    owner.Avatar,
		Role:      model.GroupRoleOwner,
	})
	for i := range users {
		members = append(members, model.GroupMember{
			GroupUuid: groupInfo.Uuid,
			UserUuid:  users[i].Uuid,
			UserName:  users[i].Nickname,
			UserEmail: users[i].Email,
			Avatar:    users[i].Avatar,
			Role:      model.GroupRoleMember,
		})
	}

	err = s.store.Transaction(ctx, func(tx mysql.Store) error {
		if err := tx.Groups().Create(ctx, groupInfo); err != nil {
			return err
		}
		return tx.GroupMembers().CreateBatch(ctx, members)
	})
	if err != nil {
		return nil, err
	}

	allIds := append([]string{owner.Uuid}, memberIds...)

	// 在线成员的连接立即进入群频道
	s.broadcaster.JoinUserChannels(constants.GroupChannelPrefix+groupInfo.Uuid, allIds)
	s.invalidateGroupList(allIds)

	// 建群人也收"new group"事件，多端登录时其他端同步到新群
	rsp := toGroupRespond(groupInfo, members)
	for _, uid := range allIds {
		if err := s.broadcaster.Broadcast(ctx, constants.UserChannelPrefix+uid,
			constants.EventNewGroup, rsp); err != nil {
			zap.L().Warn("broadcast new group failed",
				zap.String("group", groupInfo.Uuid), zap.String("user", uid), zap.Error(err))
		}
	}
	return rsp, nil
}

// findMembersForSender 查群成员并校验 userId 的成员身份
// 非成员统一返回 NotFound，不向外泄露群是否存在
func (s *groupService) findMembersForSender(ctx context.Context, groupId, userId string) ([]model.GroupMember, *model.GroupMember, error) {
	members, err := s.store.GroupMembers().FindByGroupUuid(ctx, groupId)
	if err != nil {
		return nil, nil, err
	}
	for i := range members {
		if members[i].UserUuid == userId {
			return members, &members[i], nil
		}
	}
	return nil, nil, errorx.Newf(errorx.CodeNotFound, "查询群组 uuid=%s", groupId)
}

// SendGroupMessage 发送群消息
// 事务提交后向除发送者外每个成员的 user 频道广播
func (s *groupService) SendGroupMessage(ctx context.Context, senderId string, req request.SendGroupMessageRequest) (*respond.GroupMessageRespond, error) {
	if _, err := s.store.Groups().FindByUuid(ctx, req.GroupId); err != nil {
		return nil, err
	}
	members, sender, err := s.findMembersForSender(ctx, req.GroupId, senderId)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	msg := &model.GroupMessage{
		Uuid:       snowflake.GenerateID(),
		GroupId:    req.GroupId,
		SenderId:   senderId,
		SenderName: sender.UserName,
		Content:    req.Content,
		SentAt:     now,
	}
	err = s.store.Transaction(ctx, func(tx mysql.Store) error {
		if err := tx.GroupMessages().Create(ctx, msg); err != nil {
			return err
		}
		return tx.Groups().UpdateLastMessage(ctx, req.GroupId, senderId, req.Content, now)
	})
	if err != nil {
		return nil, err
	}

	memberIds := make([]string, 0, len(members))
	for i := range members {
		memberIds = append(memberIds, members[i].UserUuid)
	}
	s.invalidateGroupList(memberIds)

	rsp := toGroupMessageRespond(msg)
	for _, uid := range memberIds {
		if uid == senderId {
			// 发送者自己不重复收广播，发送结果已在响应里
			continue
		}
		if err := s.broadcaster.Broadcast(ctx, constants.UserChannelPrefix+uid,
			constants.EventNewGroupMessage, rsp); err != nil {
			zap.L().Warn("broadcast group message failed",
				zap.Int64("message", msg.Uuid), zap.String("user", uid), zap.Error(err))
		}
	}
	return rsp, nil
}

// GetGroupMessages 分页拉取群消息，最新的在前
func (s *groupService) GetGroupMessages(ctx context.Context, userId, groupId string, limit, offset int) ([]respond.GroupMessageRespond, error) {
	if _, _, err := s.findMembersForSender(ctx, groupId, userId); err != nil {
		return nil, err
	}
	msgs, err := s.store.GroupMessages().FindPageByGroupId(ctx, groupId, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]respond.GroupMessageRespond, 0, len(msgs))
	for i := range msgs {
		out = append(out, *toGroupMessageRespond(&msgs[i]))
	}
	return out, nil
}

// ListGroups 返回当前用户加入的群列表，最近有消息的在前
// 结果短暂缓存，群内有新消息时异步失效
func (s *groupService) ListGroups(ctx context.Context, userId string) ([]respond.GroupRespond, error) {
	cacheKey := "group_list_" + userId
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var out []respond.GroupRespond
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return out, nil
		}
	}

	groupUuids, err := s.store.GroupMembers().FindGroupUuidsByUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.Groups().FindByUuids(ctx, groupUuids)
	if err != nil {
		return nil, err
	}
	out := make([]respond.GroupRespond, 0, len(groups))
	for i := range groups {
		out = append(out, *toGroupRespond(&groups[i], nil))
	}

	if data, err := json.Marshal(out); err == nil {
		s.cache.SubmitTask(func() {
			if err := s.cache.Set(context.Background(), cacheKey, string(data),
				time.Minute*constants.REDIS_TIMEOUT); err != nil {
				zap.L().Warn("cache group list failed", zap.String("user", userId), zap.Error(err))
			}
		})
	}
	return out, nil
}

func (s *groupService) invalidateGroupList(userIds []string) {
	for _, userId := range userIds {
		key := "group_list_" + userId
		s.cache.SubmitTask(func() {
			if err := s.cache.Delete(context.Background(), key); err != nil {
				zap.L().Warn("invalidate group list cache failed", zap.String("key", key), zap.Error(err))
			}
		})
	}
}

func toGroupRespond(groupInfo *model.GroupInfo, members []model.GroupMember) *respond.GroupRespond {
	var lastMsgAt string
	if groupInfo.LastMsgAt.Valid {
		lastMsgAt = groupInfo.LastMsgAt.Time.Format(timeLayout)
	}
	rsp := &respond.GroupRespond{
		Uuid:            groupInfo.Uuid,
		Name:            groupInfo.Name,
		Notice:          groupInfo.Notice,
		OwnerId:         groupInfo.OwnerId,
		OwnerName:       groupInfo.OwnerName,
		MemberCnt:       groupInfo.MemberCnt,
		LastMsgSenderId: groupInfo.LastMsgSenderId,
		LastMsg:         groupInfo.LastMsg,
		LastMsgAt:       lastMsgAt,
		CreatedAt:       groupInfo.CreatedAt.Format(timeLayout),
	}
	for i := range members {
		rsp.Members = append(rsp.Members, respond.GroupMemberRespond{
			UserUuid: members[i].UserUuid,
			UserName: members[i].UserName,
			Avatar:   members[i].Avatar,
			Role:     members[i].Role,
		})
	}
	return rsp
}

func toGroupMessageRespond(msg *model.GroupMessage) *respond.GroupMessageRespond {
	return &respond.GroupMessageRespond{
		Uuid:       strconv.FormatInt(msg.Uuid, 10),
		GroupId:    msg.GroupId,
		SenderId:   msg.SenderId,
		SenderName: msg.SenderName,
		Content:    msg.Content,
		SentAt:     msg.SentAt.Format(timeLayout),
	}
}
