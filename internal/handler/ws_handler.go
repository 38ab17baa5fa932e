// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 握手
package handler

import (
	"net/http"
	"strings"

	"buddies_chat_server/internal/service/chat"
	"buddies_chat_server/pkg/errorx"
	"buddies_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// WsHandler WebSocket 握手处理器
type WsHandler struct {
	registry *chat.Registry
	auth     chat.ChannelAuthorizer
}

// NewWsHandler 创建 WebSocket 握手处理器实例
func NewWsHandler(registry *chat.Registry, auth chat.ChannelAuthorizer) *WsHandler {
	return &WsHandler{registry: registry, auth: auth}
}

// Connect 升级 WebSocket 连接
// GET /ws?token=xxx （也支持 Authorization: Bearer 头）
// 浏览器的 WebSocket API 设不了请求头，所以优先走 query 参数
func (w *WsHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		auth := c.GetHeader("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if token == "" {
		c.JSON(http.StatusOK, gin.H{
			"code": errorx.ErrUnauthorized.Code,
			"msg":  "缺少 token",
		})
		return
	}

	claims, err := jwt.ParseToken(token)
	if err != nil || claims.Subject != "access_token" {
		c.JSON(http.StatusOK, gin.H{
			"code": errorx.ErrUnauthorized.Code,
			"msg":  "token 无效",
		})
		return
	}

	chat.NewClientInit(c, claims.UserID, w.registry, w.auth)
}
