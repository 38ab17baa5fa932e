// Package handler 提供 HTTP 请求处理器
// 本文件处理私聊会话和消息相关的 API 请求
package handler

import (
	"buddies_chat_server/internal/dto/request"
	"buddies_chat_server/internal/service"
	"buddies_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// PrivateChatHandler 私聊请求处理器
type PrivateChatHandler struct {
	chatSvc service.PrivateChatService
}

// NewPrivateChatHandler 创建私聊处理器实例
func NewPrivateChatHandler(chatSvc service.PrivateChatService) *PrivateChatHandler {
	return &PrivateChatHandler{chatSvc: chatSvc}
}

// SendMessage 发送私聊消息
// POST /api/chat/message
func (h *PrivateChatHandler) SendMessage(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.ErrUnauthorized)
		return
	}
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.chatSvc.SendMessage(c.Request.Context(), userId, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetMessages 分页拉取会话消息
// GET /api/chat/:chatId/messages?limit=&offset=
func (h *PrivateChatHandler) GetMessages(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.ErrUnauthorized)
		return
	}
	var req request.GetMessagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.chatSvc.GetMessages(c.Request.Context(), userId, c.Param("chatId"), req.Limit, req.Offset)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// MarkSeen 标记消息已读
// POST /api/chat/markSeen
func (h *PrivateChatHandler) MarkSeen(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.ErrUnauthorized)
		return
	}
	var req request.MarkSeenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.chatSvc.MarkSeen(c.Request.Context(), userId, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListChats 会话列表
// GET /api/chat/list
func (h *PrivateChatHandler) ListChats(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.ErrUnauthorized)
		return
	}
	data, err := h.chatSvc.ListChats(c.Request.Context(), userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
