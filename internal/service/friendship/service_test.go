package friendship

import (
	"context"
	"errors"
	"testing"

	"buddies_chat_server/internal/dao/memory"
	"buddies_chat_server/internal/dto/request"
	"buddies_chat_server/internal/model"
	"buddies_chat_server/internal/service/servicetest"
	"buddies_chat_server/pkg/constants"
	"buddies_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*friendshipService, *memory.Store, *servicetest.FakeBroadcaster, *servicetest.FakeCache) {
	t.Helper()
	st := memory.NewStore()
	broadcaster := servicetest.NewFakeBroadcaster()
	cache := servicetest.NewFakeCache()
	return NewFriendshipService(st, cache, broadcaster), st, broadcaster, cache
}

func seedUser(t *testing.T, st *memory.Store, uuid, nickname, email string) {
	t.Helper()
	err := st.Users().Create(context.Background(), &model.UserInfo{
		Uuid:        uuid,
		Nickname:    nickname,
		Email:       email,
		RawPassword: "secret123",
	})
	require.NoError(t, err)
}

func seedInterestFor(t *testing.T, st *memory.Store, userUuid, interestUuid, name string) {
	t.Helper()
	err := st.Interests().CreateUserInterests(context.Background(), []model.UserInterest{
		{UserUuid: userUuid, InterestUuid: interestUuid, InterestName: name},
	})
	require.NoError(t, err)
}

func TestSendRequest(t *testing.T) {
	svc, st, broadcaster, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "小红", "u2@test.com")
	seedInterestFor(t, st, "U1", "I1", "篮球")
	seedInterestFor(t, st, "U1", "I2", "音乐")
	seedInterestFor(t, st, "U2", "I2", "音乐")

	rsp, err := svc.SendRequest(ctx, "U1", request.SendFriendshipRequest{ReceiverId: "U2"})
	require.NoError(t, err)

	// 双方展示信息与兴趣交集被拍进快照
	assert.Equal(t, "U1", rsp.SenderId)
	assert.Equal(t, "小明", rsp.SenderName)
	assert.Equal(t, "U2", rsp.ReceiverId)
	assert.Equal(t, model.FriendshipUnresponded, rsp.Status)
	require.Len(t, rsp.MatchingInterests, 1)
	assert.Equal(t, "音乐", rsp.MatchingInterests[0].Name)

	// 接收人的 user 频道收到事件
	assert.Equal(t, []string{constants.EventNewFriendshipRequest},
		broadcaster.EventsFor(constants.UserChannelPrefix+"U2"))
}

func TestSendRequestToSelf(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	seedUser(t, st, "U1", "小明", "u1@test.com")

	_, err := svc.SendRequest(context.Background(), "U1", request.SendFriendshipRequest{ReceiverId: "U1"})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestSendRequestReceiverMissing(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	seedUser(t, st, "U1", "小明", "u1@test.com")

	_, err := svc.SendRequest(context.Background(), "U1", request.SendFriendshipRequest{ReceiverId: "U404"})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestSendRequestDuplicatePending(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "小红", "u2@test.com")

	_, err := svc.SendRequest(ctx, "U1", request.SendFriendshipRequest{ReceiverId: "U2"})
	require.NoError(t, err)

	// 同方向重复发起
	_, err = svc.SendRequest(ctx, "U1", request.SendFriendshipRequest{ReceiverId: "U2"})
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))

	// 反方向也冲突：应该去响应而不是再发一条
	_, err = svc.SendRequest(ctx, "U2", request.SendFriendshipRequest{ReceiverId: "U1"})
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
}

func TestSendRequestWhenAlreadyFriends(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "小红", "u2@test.com")

	rsp, err := svc.SendRequest(ctx, "U1", request.SendFriendshipRequest{ReceiverId: "U2"})
	require.NoError(t, err)
	_, err = svc.Respond(ctx, "U2", request.RespondFriendshipRequest{RequestId: rsp.Uuid, Action: "accept"})
	require.NoError(t, err)

	_, err = svc.SendRequest(ctx, "U1", request.SendFriendshipRequest{ReceiverId: "U2"})
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
}

func TestListReceived(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "小红", "u2@test.com")
	seedUser(t, st, "U3", "小刚", "u3@test.com")

	_, err := svc.SendRequest(ctx, "U1", request.SendFriendshipRequest{ReceiverId: "U3"})
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, "U2", request.SendFriendshipRequest{ReceiverId: "U3"})
	require.NoError(t, err)

	rows, err := svc.ListReceived(ctx, "U3")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// 新的在前
	assert.Equal(t, "U2", rows[0].SenderId)
	assert.Equal(t, "U1", rows[1].SenderId)

	// 发起人自己没有待响应的申请
	rows, err = svc.ListReceived(ctx, "U1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRespondAccept(t *testing.T) {
	svc, st, broadcaster, cache := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "小红", "u2@test.com")

	sent, err := svc.SendRequest(ctx, "U1", request.SendFriendshipRequest{ReceiverId: "U2"})
	require.NoError(t, err)

	rsp, err := svc.Respond(ctx, "U2", request.RespondFriendshipRequest{RequestId: sent.Uuid, Action: "accept"})
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipAccepted, rsp.Status)
	require.NotNil(t, rsp.Chat)
	// 接收人视角：对端是发起人
	assert.Equal(t, "U1", rsp.Chat.FriendId)
	assert.Equal(t, "小明", rsp.Chat.FriendName)

	// 会话确实落库且双方可见
	privateChat, err := st.PrivateChats().FindByUuid(ctx, rsp.Chat.Uuid)
	require.NoError(t, err)
	assert.True(t, privateChat.HasParticipant("U1"))
	assert.True(t, privateChat.HasParticipant("U2"))

	// 双方的 user 频道都收到 new private chat
	assert.Contains(t, broadcaster.EventsFor(constants.UserChannelPrefix+"U1"), constants.EventNewPrivateChat)
	assert.Contains(t, broadcaster.EventsFor(constants.UserChannelPrefix+"U2"), constants.EventNewPrivateChat)

	// 双方的会话列表缓存被失效
	assert.True(t, cache.WasDeleted("chat_list_U1"))
	assert.True(t, cache.WasDeleted("chat_list_U2"))
}

func TestRespondAcceptAtomicity(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "小红", "u2@test.com")

	sent, err := svc.SendRequest(ctx, "U1", request.SendFriendshipRequest{ReceiverId: "U2"})
	require.NoError(t, err)

	// 会话创建失败时整个事务回滚，不允许出现"已接受但没有会话"
	st.InjectErr("private_chats.create", errors.New("disk full"))
	_, err = svc.Respond(ctx, "U2", request.RespondFriendshipRequest{RequestId: sent.Uuid, Action: "accept"})
	require.Error(t, err)

	fr, err := st.Friendships().FindByUuid(ctx, sent.Uuid)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipUnresponded, fr.Status)

	chats, err := st.PrivateChats().FindByUser(ctx, "U1")
	require.NoError(t, err)
	assert.Empty(t, chats)

	// 失败后重试成功
	rsp, err := svc.Respond(ctx, "U2", request.RespondFriendshipRequest{RequestId: sent.Uuid, Action: "accept"})
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipAccepted, rsp.Status)
}

func TestRespondReject(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "小红", "u2@test.com")

	sent, err := svc.SendRequest(ctx, "U1", request.SendFriendshipRequest{ReceiverId: "U2"})
	require.NoError(t, err)

	rsp, err := svc.Respond(ctx, "U2", request.RespondFriendshipRequest{RequestId: sent.Uuid, Action: "reject"})
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipRejected, rsp.Status)
	assert.Nil(t, rsp.Chat)

	// 拒绝不创建会话
	chats, err := st.PrivateChats().FindByUser(ctx, "U1")
	require.NoError(t, err)
	assert.Empty(t, chats)

	// 拒绝后发起人可以重新申请
	_, err = svc.SendRequest(ctx, "U1", request.SendFriendshipRequest{ReceiverId: "U2"})
	assert.NoError(t, err)
}

func TestRespondOnlyReceiver(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "小红", "u2@test.com")
	seedUser(t, st, "U3", "小刚", "u3@test.com")

	sent, err := svc.SendRequest(ctx, "U1", request.SendFriendshipRequest{ReceiverId: "U2"})
	require.NoError(t, err)

	// 发起人和第三人都不能响应，返回 NotFound 而不是 Forbidden，不暴露申请的存在
	_, err = svc.Respond(ctx, "U1", request.RespondFriendshipRequest{RequestId: sent.Uuid, Action: "accept"})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
	_, err = svc.Respond(ctx, "U3", request.RespondFriendshipRequest{RequestId: sent.Uuid, Action: "accept"})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	// 申请对接收人依旧可响应
	accepted, err := svc.Respond(ctx, "U2", request.RespondFriendshipRequest{RequestId: sent.Uuid, Action: "accept"})
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipAccepted, accepted.Status)
}

func TestRespondTwice(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "小红", "u2@test.com")

	sent, err := svc.SendRequest(ctx, "U1", request.SendFriendshipRequest{ReceiverId: "U2"})
	require.NoError(t, err)
	_, err = svc.Respond(ctx, "U2", request.RespondFriendshipRequest{RequestId: sent.Uuid, Action: "accept"})
	require.NoError(t, err)

	// 已响应的申请再次响应按不存在处理
	_, err = svc.Respond(ctx, "U2", request.RespondFriendshipRequest{RequestId: sent.Uuid, Action: "reject"})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestBroadcastFailureDoesNotAffectWrite(t *testing.T) {
	svc, st, broadcaster, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "小红", "u2@test.com")

	broadcaster.Err = errors.New("queue closed")
	rsp, err := svc.SendRequest(ctx, "U1", request.SendFriendshipRequest{ReceiverId: "U2"})
	require.NoError(t, err)

	// 广播失败只进日志，申请照常落库
	fr, err := st.Friendships().FindByUuid(ctx, rsp.Uuid)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipUnresponded, fr.Status)
}
