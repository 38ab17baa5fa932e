package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"buddies_chat_server/internal/dto/request"
	"buddies_chat_server/internal/dto/respond"
	"buddies_chat_server/internal/handler"
	"buddies_chat_server/internal/https_server"
	"buddies_chat_server/internal/service"
	"buddies_chat_server/internal/service/chat"
	"buddies_chat_server/pkg/errorx"
	"buddies_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserService struct{}

func (stubUserService) Register(ctx context.Context, req request.RegisterRequest) (*respond.RegisterRespond, error) {
	return &respond.RegisterRespond{Uuid: "U1", Email: req.Email}, nil
}
func (stubUserService) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	return &respond.LoginRespond{Uuid: "U1"}, nil
}
func (stubUserService) RefreshToken(ctx context.Context, req request.RefreshTokenRequest) (*respond.RefreshTokenRespond, error) {
	return &respond.RefreshTokenRespond{}, nil
}
func (stubUserService) GetUserInfo(ctx context.Context, viewerId, targetUuid string) (*respond.GetUserInfoRespond, error) {
	if targetUuid == "U404" {
		return nil, errorx.Newf(errorx.CodeNotFound, "查询用户 uuid=%s", targetUuid)
	}
	return &respond.GetUserInfoRespond{Uuid: targetUuid}, nil
}
func (stubUserService) GetSuggestedUsers(ctx context.Context, userId string) ([]respond.SuggestedUserRespond, error) {
	return []respond.SuggestedUserRespond{{Uuid: "U2", MatchingCnt: 2}}, nil
}
func (stubUserService) RateUser(ctx context.Context, raterId string, req request.RateUserRequest) (*respond.RateUserRespond, error) {
	return &respond.RateUserRespond{RatedId: req.RatedId}, nil
}

type stubFriendshipService struct{}

func (stubFriendshipService) SendRequest(ctx context.Context, senderId string, req request.SendFriendshipRequest) (*respond.FriendshipRequestRespond, error) {
	return &respond.FriendshipRequestRespond{Uuid: "F1", SenderId: senderId, ReceiverId: req.ReceiverId}, nil
}
func (stubFriendshipService) ListReceived(ctx context.Context, userId string) ([]respond.FriendshipRequestRespond, error) {
	return []respond.FriendshipRequestRespond{}, nil
}
func (stubFriendshipService) Respond(ctx context.Context, userId string, req request.RespondFriendshipRequest) (*respond.RespondFriendshipRespond, error) {
	return &respond.RespondFriendshipRespond{RequestId: req.RequestId}, nil
}

type stubPrivateChatService struct{}

func (stubPrivateChatService) SendMessage(ctx context.Context, senderId string, req request.SendMessageRequest) (*respond.MessageRespond, error) {
	return &respond.MessageRespond{ChatId: req.ChatId, SenderId: senderId}, nil
}
func (stubPrivateChatService) GetMessages(ctx context.Context, userId, chatId string, limit, offset int) ([]respond.MessageRespond, error) {
	if chatId == "C404" {
		return nil, errorx.Newf(errorx.CodeNotFound, "查询私聊会话 uuid=%s", chatId)
	}
	return []respond.MessageRespond{}, nil
}
func (stubPrivateChatService) MarkSeen(ctx context.Context, userId string, req request.MarkSeenRequest) (*respond.MessageRespond, error) {
	return &respond.MessageRespond{}, nil
}
func (stubPrivateChatService) ListChats(ctx context.Context, userId string) ([]respond.PrivateChatRespond, error) {
	return []respond.PrivateChatRespond{}, nil
}

type stubGroupService struct{}

func (stubGroupService) CreateGroup(ctx context.Context, ownerId string, req request.CreateGroupRequest) (*respond.GroupRespond, error) {
	return &respond.GroupRespond{Uuid: "G1", Name: req.Name, OwnerId: ownerId}, nil
}
func (stubGroupService) SendGroupMessage(ctx context.Context, senderId string, req request.SendGroupMessageRequest) (*respond.GroupMessageRespond, error) {
	return &respond.GroupMessageRespond{GroupId: req.GroupId, SenderId: senderId}, nil
}
func (stubGroupService) GetGroupMessages(ctx context.Context, userId, groupId string, limit, offset int) ([]respond.GroupMessageRespond, error) {
	return []respond.GroupMessageRespond{}, nil
}
func (stubGroupService) ListGroups(ctx context.Context, userId string) ([]respond.GroupRespond, error) {
	return []respond.GroupRespond{}, nil
}

type stubInterestService struct{}

func (stubInterestService) ListInterests(ctx context.Context) ([]respond.InterestRespond, error) {
	return []respond.InterestRespond{{Uuid: "I1", Name: "篮球"}}, nil
}
func (stubInterestService) SeedInterests(ctx context.Context, names []string) error { return nil }

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) AuthorizeJoin(ctx context.Context, userId, chatId string) (string, error) {
	return "private:" + chatId, nil
}

// envelope 统一响应协议
type envelope struct {
	Code int             `json:"code"`
	Msg  json.RawMessage `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := &service.Services{
		User:        stubUserService{},
		Friendship:  stubFriendshipService{},
		PrivateChat: stubPrivateChatService{},
		Group:       stubGroupService{},
		Interest:    stubInterestService{},
	}
	handlers := handler.NewHandlers(svc, chat.NewRegistry(), allowAllAuthorizer{})
	return https_server.Init(handlers)
}

func doRequest(t *testing.T, engine *gin.Engine, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestMain(m *testing.M) {
	jwt.Init("unit-test-secret-at-least-32-chars!!", 30, 168)
	if err := handler.InitTrans("zh"); err != nil {
		panic(err)
	}
	m.Run()
}

func TestPublicRoutes(t *testing.T) {
	engine := newTestEngine(t)

	// 兴趣列表无需登录
	w, env := doRequest(t, engine, http.MethodGet, "/api/interest/list", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, errorx.CodeSuccess, env.Code)

	w, env = doRequest(t, engine, http.MethodPost, "/api/user/login", "",
		`{"email":"u1@test.com","password":"secret123"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, errorx.CodeSuccess, env.Code)
}

func TestParamValidation(t *testing.T) {
	engine := newTestEngine(t)

	// 缺字段命中 validator，错误按 json 字段返回
	_, env := doRequest(t, engine, http.MethodPost, "/api/user/login", "", `{"email":"not-an-email"}`)
	assert.Equal(t, errorx.CodeInvalidParam, env.Code)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(env.Msg, &fields))
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestAuthRequired(t *testing.T) {
	engine := newTestEngine(t)

	w, env := doRequest(t, engine, http.MethodGet, "/api/user/suggested", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errorx.CodeUnauthorized, env.Code)

	// refresh token 不能当 access token 用
	refreshToken, _, err := jwt.GenerateRefreshToken("U1")
	require.NoError(t, err)
	w, env = doRequest(t, engine, http.MethodGet, "/api/user/suggested", refreshToken, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errorx.CodeUnauthorized, env.Code)
}

func TestAuthedRoutes(t *testing.T) {
	engine := newTestEngine(t)
	token, err := jwt.GenerateAccessToken("U1")
	require.NoError(t, err)

	w, env := doRequest(t, engine, http.MethodGet, "/api/user/suggested", token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, errorx.CodeSuccess, env.Code)

	var suggested []respond.SuggestedUserRespond
	require.NoError(t, json.Unmarshal(env.Data, &suggested))
	require.Len(t, suggested, 1)
	assert.Equal(t, "U2", suggested[0].Uuid)

	_, env = doRequest(t, engine, http.MethodPost, "/api/friendship/send", token, `{"receiver_id":"U2"}`)
	assert.Equal(t, errorx.CodeSuccess, env.Code)

	var fr respond.FriendshipRequestRespond
	require.NoError(t, json.Unmarshal(env.Data, &fr))
	// 发起人取自 JWT 而不是请求体
	assert.Equal(t, "U1", fr.SenderId)
}

func TestBusinessErrorEnvelope(t *testing.T) {
	engine := newTestEngine(t)
	token, err := jwt.GenerateAccessToken("U1")
	require.NoError(t, err)

	w, env := doRequest(t, engine, http.MethodGet, "/api/chat/C404/messages", token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, errorx.CodeNotFound, env.Code)

	w, env = doRequest(t, engine, http.MethodGet, "/api/user/info/U404", token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, errorx.CodeNotFound, env.Code)
}

func TestWsRequiresToken(t *testing.T) {
	engine := newTestEngine(t)

	_, env := doRequest(t, engine, http.MethodGet, "/ws", "", "")
	assert.Equal(t, errorx.CodeUnauthorized, env.Code)
}
