package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"buddies_chat_server/internal/dao/mysql"
	"buddies_chat_server/pkg/constants"
	"buddies_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	// 检查连接的Origin头
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UserConn 一条已认证的 websocket 连接
// 同一用户可以有多条连接（多端登录），每条连接独立加入频道
type UserConn struct {
	UserId string

	conn     *websocket.Conn
	registry *Registry
	auth     ChannelAuthorizer

	// SendBack 注册表投递事件帧的出口，从不 close，
	// 连接退出由 done 通知，避免投递端写已关闭通道
	SendBack chan []byte
	done     chan struct{}
}

// ChannelAuthorizer 校验用户能否加入 chatId 对应的频道
type ChannelAuthorizer interface {
	// AuthorizeJoin 校验通过时返回频道名
	AuthorizeJoin(ctx context.Context, userId, chatId string) (string, error)
}

// clientFrame 前端发来的控制帧
type clientFrame struct {
	Action string `json:"action"`  // join_chat / leave_chat
	ChatId string `json:"chat_id"` // 会话或群组 uuid
}

// NewClientInit 认证通过后升级 websocket 连接并接管读写
// 连接建立即自动加入本人的 user 频道，会话频道由前端按需 join
func NewClientInit(c *gin.Context, userId string, registry *Registry, auth ChannelAuthorizer) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("websocket upgrade failed", zap.Error(err))
		return
	}

	uc := &UserConn{
		UserId:   userId,
		conn:     conn,
		registry: registry,
		auth:     auth,
		SendBack: make(chan []byte, constants.CHANNEL_SIZE),
		done:     make(chan struct{}),
	}
	registry.Join(constants.UserChannelPrefix+userId, uc)

	go uc.Read()
	go uc.Write()
	zap.L().Info("websocket connected", zap.String("user", userId))
}

// Read 读取前端控制帧，处理频道进出
// 连接断开时清理注册表里的全部成员关系
func (c *UserConn) Read() {
	defer func() {
		c.registry.LeaveAll(c)
		close(c.done)
		_ = c.conn.Close()
		zap.L().Info("websocket disconnected", zap.String("user", c.UserId))
	}()

	for {
		_, jsonMessage, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(jsonMessage, &frame); err != nil {
			zap.L().Warn("invalid client frame", zap.String("user", c.UserId), zap.Error(err))
			continue
		}

		switch frame.Action {
		case "join_chat":
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			channel, err := c.auth.AuthorizeJoin(ctx, c.UserId, frame.ChatId)
			cancel()
			if err != nil {
				zap.L().Warn("join chat rejected",
					zap.String("user", c.UserId), zap.String("chat", frame.ChatId), zap.Error(err))
				continue
			}
			c.registry.Join(channel, c)
		case "leave_chat":
			c.registry.Leave(channelForChatId(frame.ChatId), c)
		default:
			zap.L().Warn("unknown client frame action",
				zap.String("user", c.UserId), zap.String("action", frame.Action))
		}
	}
}

// Write 把注册表投递的事件帧写给前端
func (c *UserConn) Write() {
	for {
		select {
		case frame := <-c.SendBack:
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				zap.L().Error("websocket write failed", zap.String("user", c.UserId), zap.Error(err))
				_ = c.conn.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// channelForChatId 由会话/群组 uuid 推导频道名，uuid 前缀区分两类
func channelForChatId(chatId string) string {
	if strings.HasPrefix(chatId, "G") {
		return constants.GroupChannelPrefix + chatId
	}
	return constants.PrivateChannelPrefix + chatId
}

// StoreAuthorizer 基于数据库校验频道准入
type StoreAuthorizer struct {
	store mysql.Store
}

// NewStoreAuthorizer 创建数据库频道准入校验器
func NewStoreAuthorizer(store mysql.Store) *StoreAuthorizer {
	return &StoreAuthorizer{store: store}
}

// AuthorizeJoin 私聊会话要求是参与者，群频道要求是成员
func (a *StoreAuthorizer) AuthorizeJoin(ctx context.Context, userId, chatId string) (string, error) {
	switch {
	case strings.HasPrefix(chatId, "C"):
		privateChat, err := a.store.PrivateChats().FindByUuid(ctx, chatId)
		if err != nil {
			return "", err
		}
		if !privateChat.HasParticipant(userId) {
			return "", errorx.Newf(errorx.CodeForbidden, "user %s is not a participant of chat %s", userId, chatId)
		}
		return constants.PrivateChannelPrefix + chatId, nil
	case strings.HasPrefix(chatId, "G"):
		members, err := a.store.GroupMembers().FindByGroupUuid(ctx, chatId)
		if err != nil {
			return "", err
		}
		for i := range members {
			if members[i].UserUuid == userId {
				return constants.GroupChannelPrefix + chatId, nil
			}
		}
		return "", errorx.Newf(errorx.CodeForbidden, "user %s is not a member of group %s", userId, chatId)
	default:
		return "", errorx.Newf(errorx.CodeInvalidParam, "unrecognized chat id %s", chatId)
	}
}

var _ ChannelAuthorizer = (*StoreAuthorizer)(nil)
