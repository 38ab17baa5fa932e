package group

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

func newTestService(t *testing.T) (*groupService, *memory.Store, *servicetest.FakeBroadcaster, *servicetest.FakeCache) {
	t.Helper()
	st := memory.NewStore()
	broadcaster := servicetest.NewFakeBroadcaster()
	cache := servicetest.NewFakeCache()
	return NewGroupService(st, cache, broadcaster), st, broadcaster, cache
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

// seedFriendship 好友关系由私聊会话的存在证明
func seedFriendship(t *testing.T, st *memory.Store, chatUuid, oneId, twoId string) {
	t.Helper()
	err := st.PrivateChats().Create(context.Background(), &model.PrivateChat{
		Uuid:      chatUuid,
		UserOneId: oneId,
		UserTwoId: twoId,
	})
	require.NoError(t, err)
}

func TestCreateGroup(t *testing.T) {
	svc, st, broadcaster, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "群主", "u1@test.com")
	seedUser(t, st, "U2", "成员二", "u2@test.com")
	seedUser(t, st, "U3", "成员三", "u3@test.com")
	seedFriendship(t, st, "C1", "U1", "U2")
	seedFriendship(t, st, "C2", "U3", "U1")

	rsp, err := svc.CreateGroup(ctx, "U1", request.CreateGroupRequest{
		Name:      "周末球局",
		Notice:    "周六上午九点",
		MemberIds: []string{"U2", "U3", "U2"}, // 重复成员会被去重
	})
	require.NoError(t, err)
	assert.Equal(t, "周末球局", rsp.Name)
	assert.Equal(t, "U1", rsp.OwnerId)
	assert.Equal(t, 3, rsp.MemberCnt)

	// 成员快照：群主 + 两个成员，角色正确
	require.Len(t, rsp.Members, 3)
	roles := make(map[string]int8, 3)
	for _, m := range rsp.Members {
		roles[m.UserUuid] = m.Role
	}
	assert.Equal(t, model.GroupRoleOwner, roles["U1"])
	assert.Equal(t, model.GroupRoleMember, roles["U2"])
	assert.Equal(t, model.GroupRoleMember, roles["U3"])

	// 在线成员的连接被加入群频道
	require.Len(t, broadcaster.Joins, 1)
	assert.Equal(t, constants.GroupChannelPrefix+rsp.Uuid, broadcaster.Joins[0].Target)
	assert.ElementsMatch(t, []string{"U1", "U2", "U3"}, broadcaster.Joins[0].UserIds)

	// 包括群主在内，所有人的 user 频道都收到 new group
	for _, uid := range []string{"U1", "U2", "U3"} {
		assert.Contains(t, broadcaster.EventsFor(constants.UserChannelPrefix+uid), constants.EventNewGroup)
	}
}

func TestCreateGroupRequiresAllFriends(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "群主", "u1@test.com")
	seedUser(t, st, "U2", "成员二", "u2@test.com")
	seedUser(t, st, "U3", "路人", "u3@test.com")
	seedFriendship(t, st, "C1", "U1", "U2")
	// U3 不是 U1 的好友

	_, err := svc.CreateGroup(ctx, "U1", request.CreateGroupRequest{
		Name:      "周末球局",
		MemberIds: []string{"U2", "U3"},
	})
	assert.Equal(t, errorx.CodeUnprocessable, errorx.GetCode(err))

	// 整个操作失败，不留下部分成员的群
	groups, err := svc.ListGroups(ctx, "U1")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestCreateGroupOwnerInMemberList(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	seedUser(t, st, "U1", "群主", "u1@test.com")

	_, err := svc.CreateGroup(context.Background(), "U1", request.CreateGroupRequest{
		Name:      "自嗨群",
		MemberIds: []string{"U1"},
	})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestCreateGroupAtomicity(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "群主", "u1@test.com")
	seedUser(t, st, "U2", "成员二", "u2@test.com")
	seedFriendship(t, st, "C1", "U1", "U2")

	st.InjectErr("group_members.create_batch", errors.New("lock timeout"))
	_, err := svc.CreateGroup(ctx, "U1", request.CreateGroupRequest{
		Name:      "周末球局",
		MemberIds: []string{"U2"},
	})
	require.Error(t, err)

	// 群和成员都没有落库
	groups, err := svc.ListGroups(ctx, "U1")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func createGroup(t *testing.T, svc *groupService, ownerId string, memberIds []string) string {
	t.Helper()
	rsp, err := svc.CreateGroup(context.Background(), ownerId, request.CreateGroupRequest{
		Name:      "周末球局",
		MemberIds: memberIds,
	})
	require.NoError(t, err)
	return rsp.Uuid
}

func TestSendGroupMessage(t *testing.T) {
	svc, st, broadcaster, cache := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "群主", "u1@test.com")
	seedUser(t, st, "U2", "成员二", "u2@test.com")
	seedUser(t, st, "U3", "成员三", "u3@test.com")
	seedFriendship(t, st, "C1", "U1", "U2")
	seedFriendship(t, st, "C2", "U1", "U3")
	groupId := createGroup(t, svc, "U1", []string{"U2", "U3"})

	rsp, err := svc.SendGroupMessage(ctx, "U2", request.SendGroupMessageRequest{
		GroupId: groupId,
		Content: "我先到",
	})
	require.NoError(t, err)
	assert.Equal(t, "U2", rsp.SenderId)
	assert.Equal(t, "成员二", rsp.SenderName)

	// 发送者自己不重复收广播，其余成员各收一份
	assert.NotContains(t, broadcaster.EventsFor(constants.UserChannelPrefix+"U2"), constants.EventNewGroupMessage)
	assert.Contains(t, broadcaster.EventsFor(constants.UserChannelPrefix+"U1"), constants.EventNewGroupMessage)
	assert.Contains(t, broadcaster.EventsFor(constants.UserChannelPrefix+"U3"), constants.EventNewGroupMessage)

	// 群的最后消息缓存列同步更新，群列表缓存失效
	groupInfo, err := st.Groups().FindByUuid(ctx, groupId)
	require.NoError(t, err)
	assert.Equal(t, "我先到", groupInfo.LastMsg)
	assert.Equal(t, "U2", groupInfo.LastMsgSenderId)
	assert.True(t, cache.WasDeleted("group_list_U1"))
}

func TestSendGroupMessageNonMember(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "群主", "u1@test.com")
	seedUser(t, st, "U2", "成员二", "u2@test.com")
	seedUser(t, st, "U4", "路人", "u4@test.com")
	seedFriendship(t, st, "C1", "U1", "U2")
	groupId := createGroup(t, svc, "U1", []string{"U2"})

	// 非成员当作群不存在
	_, err := svc.SendGroupMessage(ctx, "U4", request.SendGroupMessageRequest{GroupId: groupId, Content: "hi"})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	_, err = svc.SendGroupMessage(ctx, "U1", request.SendGroupMessageRequest{GroupId: "G404", Content: "hi"})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestGetGroupMessagesPagination(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "群主", "u1@test.com")
	seedUser(t, st, "U2", "成员二", "u2@test.com")
	seedFriendship(t, st, "C1", "U1", "U2")
	groupId := createGroup(t, svc, "U1", []string{"U2"})

	for _, content := range []string{"第一条", "第二条", "第三条"} {
		_, err := svc.SendGroupMessage(ctx, "U1", request.SendGroupMessageRequest{GroupId: groupId, Content: content})
		require.NoError(t, err)
	}

	pageOne, err := svc.GetGroupMessages(ctx, "U2", groupId, 2, 0)
	require.NoError(t, err)
	require.Len(t, pageOne, 2)
	assert.Equal(t, "第三条", pageOne[0].Content)
	assert.Equal(t, "第二条", pageOne[1].Content)

	pageTwo, err := svc.GetGroupMessages(ctx, "U2", groupId, 2, 2)
	require.NoError(t, err)
	require.Len(t, pageTwo, 1)
	assert.Equal(t, "第一条", pageTwo[0].Content)

	// 非成员连历史都看不到
	_, err = svc.GetGroupMessages(ctx, "U9", groupId, 2, 0)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestListGroups(t *testing.T) {
	svc, st, _, cache := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "群主", "u1@test.com")
	seedUser(t, st, "U2", "成员二", "u2@test.com")
	seedFriendship(t, st, "C1", "U1", "U2")
	groupId := createGroup(t, svc, "U1", []string{"U2"})

	groups, err := svc.ListGroups(ctx, "U2")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, groupId, groups[0].Uuid)
	assert.True(t, cache.Has("group_list_U2"))

	// 非成员的列表为空
	groups, err = svc.ListGroups(ctx, "U9")
	require.NoError(t, err)
	assert.Empty(t, groups)
}
