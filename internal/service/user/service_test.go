package user

import (
	"context"
	"testing"

	"buddies_chat_server/internal/dao/memory"
	"buddies_chat_server/internal/dto/request"
	"buddies_chat_server/internal/model"
	"buddies_chat_server/internal/service/servicetest"
	"buddies_chat_server/pkg/errorx"
	"buddies_chat_server/pkg/util/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	jwt.Init("unit-test-secret-at-least-32-chars!!", 30, 168)
	m.Run()
}

func newTestService(t *testing.T) (*userService, *memory.Store, *servicetest.FakeCache) {
	t.Helper()
	st := memory.NewStore()
	cache := servicetest.NewFakeCache()
	return NewUserService(st, cache), st, cache
}

func seedInterest(t *testing.T, st *memory.Store, uuid, name string) {
	t.Helper()
	require.NoError(t, st.Interests().Create(context.Background(), &model.Interest{Uuid: uuid, Name: name}))
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

// seedAcceptedEdge 两人之间有已接受的申请边，即为好友
func seedAcceptedEdge(t *testing.T, st *memory.Store, uuid, senderId, receiverId string) {
	t.Helper()
	err := st.Friendships().Create(context.Background(), &model.FriendshipRequest{
		Uuid:       uuid,
		SenderId:   senderId,
		ReceiverId: receiverId,
		Status:     model.FriendshipAccepted,
	})
	require.NoError(t, err)
}

func TestRegister(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	seedInterest(t, st, "I1", "篮球")
	seedInterest(t, st, "I2", "音乐")

	rsp, err := svc.Register(ctx, request.RegisterRequest{
		Email:         "new@test.com",
		Password:      "secret123",
		Nickname:      "新用户",
		InterestUuids: []string{"I1", "I2", "I1"}, // 重复标签会被去重
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rsp.Uuid)
	assert.NotEmpty(t, rsp.AccessToken)
	assert.NotEmpty(t, rsp.RefreshToken)
	require.Len(t, rsp.Interests, 2)

	// 密码以哈希入库，注册后能用原密码登录
	login, err := svc.Login(ctx, request.LoginRequest{Email: "new@test.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, rsp.Uuid, login.Uuid)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, st, _ := newTestService(t)
	seedUser(t, st, "U1", "老用户", "taken@test.com")

	_, err := svc.Register(context.Background(), request.RegisterRequest{
		Email:    "taken@test.com",
		Password: "secret123",
		Nickname: "新用户",
	})
	assert.Equal(t, errorx.CodeUserExist, errorx.GetCode(err))
}

func TestRegisterUnknownInterest(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), request.RegisterRequest{
		Email:         "new@test.com",
		Password:      "secret123",
		Nickname:      "新用户",
		InterestUuids: []string{"I404"},
	})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestLoginWrongCredentials(t *testing.T) {
	svc, st, _ := newTestService(t)
	seedUser(t, st, "U1", "小明", "u1@test.com")

	// 密码错误和邮箱不存在返回同一个错误
	_, err := svc.Login(context.Background(), request.LoginRequest{Email: "u1@test.com", Password: "wrong-pass"})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	_, err2 := svc.Login(context.Background(), request.LoginRequest{Email: "nobody@test.com", Password: "secret123"})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err2))
	assert.Equal(t, err.Error(), err2.Error())
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, st, _ := newTestService(t)
	err := st.Users().Create(context.Background(), &model.UserInfo{
		Uuid:        "U1",
		Nickname:    "被禁用",
		Email:       "banned@test.com",
		RawPassword: "secret123",
		Status:      1,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), request.LoginRequest{Email: "banned@test.com", Password: "secret123"})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")

	login, err := svc.Login(ctx, request.LoginRequest{Email: "u1@test.com", Password: "secret123"})
	require.NoError(t, err)

	rsp, err := svc.RefreshToken(ctx, request.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, rsp.AccessToken)
	assert.NotEqual(t, login.RefreshToken, rsp.RefreshToken)

	// 旧令牌已被轮换作废
	_, err = svc.RefreshToken(ctx, request.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	// 新令牌可用
	_, err = svc.RefreshToken(ctx, request.RefreshTokenRequest{RefreshToken: rsp.RefreshToken})
	assert.NoError(t, err)
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	accessToken, err := jwt.GenerateAccessToken("U1")
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), request.RefreshTokenRequest{RefreshToken: accessToken})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}

func TestGetUserInfoRelationship(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "小红", "u2@test.com")
	err := st.Friendships().Create(ctx, &model.FriendshipRequest{
		Uuid:       "F1",
		SenderId:   "U1",
		ReceiverId: "U2",
		Status:     model.FriendshipUnresponded,
	})
	require.NoError(t, err)

	// 接收人视角：有待响应的申请
	rsp, err := svc.GetUserInfo(ctx, "U2", "U1")
	require.NoError(t, err)
	assert.True(t, rsp.Relationship.CanRespond)
	assert.Equal(t, "F1", rsp.Relationship.PendingRequestId)
	assert.False(t, rsp.Relationship.CanSend)

	// 发起人视角：等待对方响应
	rsp, err = svc.GetUserInfo(ctx, "U1", "U2")
	require.NoError(t, err)
	assert.True(t, rsp.Relationship.HasSentPending)

	// 看自己的主页时关系标志位全为零值
	rsp, err = svc.GetUserInfo(ctx, "U1", "U1")
	require.NoError(t, err)
	assert.Equal(t, "小明", rsp.Nickname)
	assert.False(t, rsp.Relationship.CanSend)
	assert.False(t, rsp.Relationship.AreFriends)
}

func TestGetSuggestedUsers(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	seedInterest(t, st, "I1", "篮球")
	seedInterest(t, st, "I2", "音乐")
	seedInterest(t, st, "I3", "摄影")
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "两项重合", "u2@test.com")
	seedUser(t, st, "U3", "一项重合", "u3@test.com")
	seedUser(t, st, "U4", "无重合", "u4@test.com")

	addInterests := func(userUuid string, pairs map[string]string) {
		rows := make([]model.UserInterest, 0, len(pairs))
		for uuid, name := range pairs {
			rows = append(rows, model.UserInterest{UserUuid: userUuid, InterestUuid: uuid, InterestName: name})
		}
		require.NoError(t, st.Interests().CreateUserInterests(ctx, rows))
	}
	addInterests("U1", map[string]string{"I1": "篮球", "I2": "音乐"})
	addInterests("U2", map[string]string{"I1": "篮球", "I2": "音乐", "I3": "摄影"})
	addInterests("U3", map[string]string{"I2": "音乐", "I3": "摄影"})
	addInterests("U4", map[string]string{"I3": "摄影"})

	rows, err := svc.GetSuggestedUsers(ctx, "U1")
	require.NoError(t, err)
	// 共同兴趣至少一个，按共同数倒序；U4 无重合不出现
	require.Len(t, rows, 2)
	assert.Equal(t, "U2", rows[0].Uuid)
	assert.Equal(t, 2, rows[0].MatchingCnt)
	assert.Equal(t, "U3", rows[1].Uuid)
	assert.Equal(t, 1, rows[1].MatchingCnt)
}

func TestRateUserRequiresFriendship(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "小红", "u2@test.com")

	_, err := svc.RateUser(ctx, "U1", request.RateUserRequest{RatedId: "U2", Value: 5})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	_, err = svc.RateUser(ctx, "U1", request.RateUserRequest{RatedId: "U1", Value: 5})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestRateUserOverwrite(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "小红", "u2@test.com")
	seedAcceptedEdge(t, st, "F1", "U1", "U2")

	rsp, err := svc.RateUser(ctx, "U1", request.RateUserRequest{RatedId: "U2", Value: 3})
	require.NoError(t, err)
	assert.Equal(t, float64(3), rsp.AvgRating)
	assert.Equal(t, 1, rsp.RaterCnt)

	// 同一打分人重复评分是覆盖而不是追加
	rsp, err = svc.RateUser(ctx, "U1", request.RateUserRequest{RatedId: "U2", Value: 5})
	require.NoError(t, err)
	assert.Equal(t, float64(5), rsp.AvgRating)
	assert.Equal(t, 1, rsp.RaterCnt)

	// 用户表的聚合缓存列同步更新
	rated, err := st.Users().FindByUuid(ctx, "U2")
	require.NoError(t, err)
	require.True(t, rated.AvgRating.Valid)
	assert.Equal(t, float64(5), rated.AvgRating.Float64)
	assert.Equal(t, 1, rated.RaterCnt)
}

func TestRateUserAggregatesMultipleRaters(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "小红", "u2@test.com")
	seedUser(t, st, "U3", "小刚", "u3@test.com")
	seedAcceptedEdge(t, st, "F1", "U1", "U2")
	seedAcceptedEdge(t, st, "F2", "U3", "U2")

	_, err := svc.RateUser(ctx, "U1", request.RateUserRequest{RatedId: "U2", Value: 2})
	require.NoError(t, err)
	rsp, err := svc.RateUser(ctx, "U3", request.RateUserRequest{RatedId: "U2", Value: 4})
	require.NoError(t, err)
	assert.Equal(t, float64(3), rsp.AvgRating)
	assert.Equal(t, 2, rsp.RaterCnt)
}

func TestRateUserRefreshesEdgeSnapshot(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, st, "U1", "小明", "u1@test.com")
	seedUser(t, st, "U2", "小红", "u2@test.com")
	// U2 是这条边的发起人，被评分后边上的快照要刷新
	seedAcceptedEdge(t, st, "F1", "U2", "U1")

	_, err := svc.RateUser(ctx, "U1", request.RateUserRequest{RatedId: "U2", Value: 4})
	require.NoError(t, err)

	edge, err := st.Friendships().FindByUuid(ctx, "F1")
	require.NoError(t, err)
	require.True(t, edge.SenderAvgRating.Valid)
	assert.Equal(t, float64(4), edge.SenderAvgRating.Float64)
}
