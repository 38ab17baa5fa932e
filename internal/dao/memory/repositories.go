package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"buddies_chat_server/internal/model"
	"buddies_chat_server/pkg/errorx"
)

// ==================== 用户 ====================

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *model.UserInfo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("users.create"); err != nil {
		return err
	}
	// 对齐 GORM 的 BeforeSave hook，保证明文密码同样被哈希
	if err := user.BeforeSave(nil); err != nil {
		return err
	}
	r.s.assign(&user.CreatedAt, &user.ID)
	r.s.st.users = append(r.s.st.users, *user)
	return nil
}

func (r *userRepo) FindByUuid(ctx context.Context, uuid string) (*model.UserInfo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.st.users {
		if r.s.st.users[i].Uuid == uuid {
			u := r.s.st.users[i]
			return &u, nil
		}
	}
	return nil, errorx.Newf(errorx.CodeNotFound, "查询用户 uuid=%s", uuid)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.UserInfo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.st.users {
		if r.s.st.users[i].Email == email {
			u := r.s.st.users[i]
			return &u, nil
		}
	}
	return nil, errorx.Newf(errorx.CodeNotFound, "查询用户 email=%s", email)
}

func (r *userRepo) FindByUuids(ctx context.Context, uuids []string) ([]model.UserInfo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	want := make(map[string]struct{}, len(uuids))
	for _, id := range uuids {
		want[id] = struct{}{}
	}
	var out []model.UserInfo
	for i := range r.s.st.users {
		if _, ok := want[r.s.st.users[i].Uuid]; ok {
			out = append(out, r.s.st.users[i])
		}
	}
	return out, nil
}

func (r *userRepo) UpdateRating(ctx context.Context, uuid string, avg sql.NullFloat64, raterCnt int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("users.update_rating"); err != nil {
		return err
	}
	for i := range r.s.st.users {
		if r.s.st.users[i].Uuid == uuid {
			r.s.st.users[i].AvgRating = avg
			r.s.st.users[i].RaterCnt = raterCnt
			return nil
		}
	}
	return errorx.Newf(errorx.CodeNotFound, "更新评分缓存 uuid=%s", uuid)
}

func (r *userRepo) FindSuggested(ctx context.Context, userUuid string, interestUuids []string) ([]model.SuggestedUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	want := make(map[string]struct{}, len(interestUuids))
	for _, id := range interestUuids {
		want[id] = struct{}{}
	}
	cnt := make(map[string]int)
	for i := range r.s.st.userInterests {
		ui := &r.s.st.userInterests[i]
		if ui.UserUuid == userUuid {
			continue
		}
		if _, ok := want[ui.InterestUuid]; ok {
			cnt[ui.UserUuid]++
		}
	}
	var out []model.SuggestedUser
	for i := range r.s.st.users {
		u := &r.s.st.users[i]
		if n, ok := cnt[u.Uuid]; ok {
			out = append(out, model.SuggestedUser{
				Uuid:        u.Uuid,
				Nickname:    u.Nickname,
				Avatar:      u.Avatar,
				AvgRating:   u.AvgRating,
				MatchingCnt: n,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MatchingCnt > out[j].MatchingCnt })
	return out, nil
}

// ==================== 兴趣标签 ====================

type interestRepo struct{ s *Store }

func (r *interestRepo) Create(ctx context.Context, interest *model.Interest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("interests.create"); err != nil {
		return err
	}
	r.s.assign(&interest.CreatedAt, &interest.ID)
	r.s.st.interests = append(r.s.st.interests, *interest)
	return nil
}

func (r *interestRepo) FindAll(ctx context.Context) ([]model.Interest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := append([]model.Interest(nil), r.s.st.interests...)
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].Name, out[j].Name) < 0 })
	return out, nil
}

func (r *interestRepo) FindByUuids(ctx context.Context, uuids []string) ([]model.Interest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	want := make(map[string]struct{}, len(uuids))
	for _, id := range uuids {
		want[id] = struct{}{}
	}
	var out []model.Interest
	for i := range r.s.st.interests {
		if _, ok := want[r.s.st.interests[i].Uuid]; ok {
			out = append(out, r.s.st.interests[i])
		}
	}
	return out, nil
}

func (r *interestRepo) CreateUserInterests(ctx context.Context, rows []model.UserInterest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("interests.create_user_interests"); err != nil {
		return err
	}
	for i := range rows {
		r.s.assign(&rows[i].CreatedAt, &rows[i].ID)
		r.s.st.userInterests = append(r.s.st.userInterests, rows[i])
	}
	return nil
}

func (r *interestRepo) FindByUser(ctx context.Context, userUuid string) ([]model.UserInterest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.UserInterest
	for i := range r.s.st.userInterests {
		if r.s.st.userInterests[i].UserUuid == userUuid {
			out = append(out, r.s.st.userInterests[i])
		}
	}
	return out, nil
}

// ==================== 好友申请 ====================

type friendshipRepo struct{ s *Store }

func (r *friendshipRepo) Create(ctx context.Context, req *model.FriendshipRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("friendships.create"); err != nil {
		return err
	}
	r.s.assign(&req.CreatedAt, &req.ID)
	r.s.st.friendships = append(r.s.st.friendships, *req)
	return nil
}

func (r *friendshipRepo) Update(ctx context.Context, req *model.FriendshipRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("friendships.update"); err != nil {
		return err
	}
	for i := range r.s.st.friendships {
		if r.s.st.friendships[i].Uuid == req.Uuid {
			r.s.st.friendships[i] = *req
			return nil
		}
	}
	return errorx.Newf(errorx.CodeNotFound, "更新好友申请 uuid=%s", req.Uuid)
}

func (r *friendshipRepo) FindByUuid(ctx context.Context, uuid string) (*model.FriendshipRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.st.friendships {
		if r.s.st.friendships[i].Uuid == uuid {
			f := r.s.st.friendships[i]
			return &f, nil
		}
	}
	return nil, errorx.Newf(errorx.CodeNotFound, "查询好友申请 uuid=%s", uuid)
}

func (r *friendshipRepo) FindBetween(ctx context.Context, userOneId, userTwoId string) ([]model.FriendshipRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.FriendshipRequest
	for i := range r.s.st.friendships {
		f := &r.s.st.friendships[i]
		if (f.SenderId == userOneId && f.ReceiverId == userTwoId) ||
			(f.SenderId == userTwoId && f.ReceiverId == userOneId) {
			out = append(out, *f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *friendshipRepo) FindPendingByReceiver(ctx context.Context, receiverId string) ([]model.FriendshipRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.FriendshipRequest
	for i := range r.s.st.friendships {
		f := &r.s.st.friendships[i]
		if f.ReceiverId == receiverId && f.Status == model.FriendshipUnresponded {
			out = append(out, *f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *friendshipRepo) FindAcceptedBetween(ctx context.Context, userOneId, userTwoId string) (*model.FriendshipRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.st.friendships {
		f := &r.s.st.friendships[i]
		if f.Status != model.FriendshipAccepted {
			continue
		}
		if (f.SenderId == userOneId && f.ReceiverId == userTwoId) ||
			(f.SenderId == userTwoId && f.ReceiverId == userOneId) {
			out := *f
			return &out, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "查询已接受的好友关系")
}

// ==================== 私聊会话 ====================

type privateChatRepo struct{ s *Store }

func (r *privateChatRepo) Create(ctx context.Context, chat *model.PrivateChat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("private_chats.create"); err != nil {
		return err
	}
	r.s.assign(&chat.CreatedAt, &chat.ID)
	r.s.st.privateChats = append(r.s.st.privateChats, *chat)
	return nil
}

func (r *privateChatRepo) FindByUuid(ctx context.Context, uuid string) (*model.PrivateChat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.st.privateChats {
		if r.s.st.privateChats[i].Uuid == uuid {
			c := r.s.st.privateChats[i]
			return &c, nil
		}
	}
	return nil, errorx.Newf(errorx.CodeNotFound, "查询私聊会话 uuid=%s", uuid)
}

func (r *privateChatRepo) FindByUser(ctx context.Context, userId string) ([]model.PrivateChat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.PrivateChat
	for i := range r.s.st.privateChats {
		if r.s.st.privateChats[i].HasParticipant(userId) {
			out = append(out, r.s.st.privateChats[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].LastMsgAt.Time, out[j].LastMsgAt.Time
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *privateChatRepo) CountBetweenUserAndUsers(ctx context.Context, userId string, others []string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	want := make(map[string]struct{}, len(others))
	for _, id := range others {
		want[id] = struct{}{}
	}
	var cnt int64
	for i := range r.s.st.privateChats {
		c := &r.s.st.privateChats[i]
		if c.UserOneId == userId {
			if _, ok := want[c.UserTwoId]; ok {
				cnt++
			}
		} else if c.UserTwoId == userId {
			if _, ok := want[c.UserOneId]; ok {
				cnt++
			}
		}
	}
	return cnt, nil
}

func (r *privateChatRepo) UpdateLastMessage(ctx context.Context, uuid, senderId, content string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("private_chats.update_last_message"); err != nil {
		return err
	}
	for i := range r.s.st.privateChats {
		if r.s.st.privateChats[i].Uuid == uuid {
			r.s.st.privateChats[i].LastMsgSenderId = senderId
			r.s.st.privateChats[i].LastMsg = content
			r.s.st.privateChats[i].LastMsgAt = sql.NullTime{Time: at, Valid: true}
			return nil
		}
	}
	return errorx.Newf(errorx.CodeNotFound, "更新会话最后消息 uuid=%s", uuid)
}

// ==================== 私聊消息 ====================

type privateMsgRepo struct{ s *Store }

func (r *privateMsgRepo) Create(ctx context.Context, msg *model.PrivateChatMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("private_messages.create"); err != nil {
		return err
	}
	r.s.assign(&msg.CreatedAt, &msg.ID)
	r.s.st.privateMsgs = append(r.s.st.privateMsgs, *msg)
	return nil
}

func (r *privateMsgRepo) FindByUuid(ctx context.Context, uuid int64) (*model.PrivateChatMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.st.privateMsgs {
		if r.s.st.privateMsgs[i].Uuid == uuid {
			m := r.s.st.privateMsgs[i]
			return &m, nil
		}
	}
	return nil, errorx.Newf(errorx.CodeNotFound, "查询私聊消息 uuid=%d", uuid)
}

func (r *privateMsgRepo) FindPageByChatId(ctx context.Context, chatId string, limit, offset int) ([]model.PrivateChatMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []model.PrivateChatMessage
	for i := range r.s.st.privateMsgs {
		if r.s.st.privateMsgs[i].ChatId == chatId {
			all = append(all, r.s.st.privateMsgs[i])
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].SentAt.Equal(all[j].SentAt) {
			return all[i].SentAt.After(all[j].SentAt)
		}
		return all[i].Uuid > all[j].Uuid
	})
	return page(all, limit, offset), nil
}

func (r *privateMsgRepo) UpdateStatus(ctx context.Context, uuid int64, status string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("private_messages.update_status"); err != nil {
		return err
	}
	for i := range r.s.st.privateMsgs {
		if r.s.st.privateMsgs[i].Uuid == uuid {
			r.s.st.privateMsgs[i].Status = status
			r.s.st.privateMsgs[i].StatusAt = at
			return nil
		}
	}
	return errorx.Newf(errorx.CodeNotFound, "更新消息状态 uuid=%d", uuid)
}

// ==================== 群组 ====================

type groupRepo struct{ s *Store }

func (r *groupRepo) Create(ctx context.Context, group *model.GroupInfo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("groups.create"); err != nil {
		return err
	}
	r.s.assign(&group.CreatedAt, &group.ID)
	r.s.st.groups = append(r.s.st.groups, *group)
	return nil
}

func (r *groupRepo) FindByUuid(ctx context.Context, uuid string) (*model.GroupInfo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.st.groups {
		if r.s.st.groups[i].Uuid == uuid {
			g := r.s.st.groups[i]
			return &g, nil
		}
	}
	return nil, errorx.Newf(errorx.CodeNotFound, "查询群组 uuid=%s", uuid)
}

func (r *groupRepo) FindByUuids(ctx context.Context, uuids []string) ([]model.GroupInfo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	want := make(map[string]struct{}, len(uuids))
	for _, id := range uuids {
		want[id] = struct{}{}
	}
	var out []model.GroupInfo
	for i := range r.s.st.groups {
		if _, ok := want[r.s.st.groups[i].Uuid]; ok {
			out = append(out, r.s.st.groups[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].LastMsgAt.Time, out[j].LastMsgAt.Time
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *groupRepo) UpdateLastMessage(ctx context.Context, uuid, senderId, content string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("groups.update_last_message"); err != nil {
		return err
	}
	for i := range r.s.st.groups {
		if r.s.st.groups[i].Uuid == uuid {
			r.s.st.groups[i].LastMsgSenderId = senderId
			r.s.st.groups[i].LastMsg = content
			r.s.st.groups[i].LastMsgAt = sql.NullTime{Time: at, Valid: true}
			return nil
		}
	}
	return errorx.Newf(errorx.CodeNotFound, "更新群最后消息 uuid=%s", uuid)
}

// ==================== 群成员 ====================

type groupMemberRepo struct{ s *Store }

func (r *groupMemberRepo) CreateBatch(ctx context.Context, members []model.GroupMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("group_members.create_batch"); err != nil {
		return err
	}
	for i := range members {
		r.s.assign(&members[i].CreatedAt, &members[i].ID)
		r.s.st.groupMembers = append(r.s.st.groupMembers, members[i])
	}
	return nil
}

func (r *groupMemberRepo) FindByGroupUuid(ctx context.Context, groupUuid string) ([]model.GroupMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.GroupMember
	for i := range r.s.st.groupMembers {
		if r.s.st.groupMembers[i].GroupUuid == groupUuid {
			out = append(out, r.s.st.groupMembers[i])
		}
	}
	return out, nil
}

func (r *groupMemberRepo) FindGroupUuidsByUser(ctx context.Context, userUuid string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []string
	for i := range r.s.st.groupMembers {
		if r.s.st.groupMembers[i].UserUuid == userUuid {
			out = append(out, r.s.st.groupMembers[i].GroupUuid)
		}
	}
	return out, nil
}

// ==================== 群消息 ====================

type groupMsgRepo struct{ s *Store }

func (r *groupMsgRepo) Create(ctx context.Context, msg *model.GroupMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("group_messages.create"); err != nil {
		return err
	}
	r.s.assign(&msg.CreatedAt, &msg.ID)
	r.s.st.groupMsgs = append(r.s.st.groupMsgs, *msg)
	return nil
}

func (r *groupMsgRepo) FindPageByGroupId(ctx context.Context, groupId string, limit, offset int) ([]model.GroupMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []model.GroupMessage
	for i := range r.s.st.groupMsgs {
		if r.s.st.groupMsgs[i].GroupId == groupId {
			all = append(all, r.s.st.groupMsgs[i])
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].SentAt.Equal(all[j].SentAt) {
			return all[i].SentAt.After(all[j].SentAt)
		}
		return all[i].Uuid > all[j].Uuid
	})
	return page(all, limit, offset), nil
}

// ==================== 评分 ====================

type ratingRepo struct{ s *Store }

func (r *ratingRepo) FindByRaterAndRated(ctx context.Context, raterId, ratedId string) (*model.Rating, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.st.ratings {
		if r.s.st.ratings[i].RaterId == raterId && r.s.st.ratings[i].RatedId == ratedId {
			rt := r.s.st.ratings[i]
			return &rt, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "查询评分")
}

func (r *ratingRepo) Create(ctx context.Context, rating *model.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("ratings.create"); err != nil {
		return err
	}
	r.s.assign(&rating.CreatedAt, &rating.ID)
	r.s.st.ratings = append(r.s.st.ratings, *rating)
	return nil
}

func (r *ratingRepo) Update(ctx context.Context, rating *model.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeErr("ratings.update"); err != nil {
		return err
	}
	for i := range r.s.st.ratings {
		if r.s.st.ratings[i].RaterId == rating.RaterId && r.s.st.ratings[i].RatedId == rating.RatedId {
			r.s.st.ratings[i] = *rating
			return nil
		}
	}
	return errorx.New(errorx.CodeNotFound, "更新评分")
}

func (r *ratingRepo) AggregateByRated(ctx context.Context, ratedId string) (float64, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var sum, cnt int64
	for i := range r.s.st.ratings {
		if r.s.st.ratings[i].RatedId == ratedId {
			sum += int64(r.s.st.ratings[i].Value)
			cnt++
		}
	}
	if cnt == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(cnt), cnt, nil
}

// page 对已排序切片做 offset/limit 截取
func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return append([]T(nil), all...)
}
