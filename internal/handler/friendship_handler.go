// Package handler 提供 HTTP 请求处理器
// 本文件处理好友申请相关的 API 请求
package handler

import (
	"buddies_chat_server/internal/dto/request"
	"buddies_chat_server/internal/service"
	"buddies_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// FriendshipHandler 好友申请请求处理器
type FriendshipHandler struct {
	friendshipSvc service.FriendshipService
}

// NewFriendshipHandler 创建好友申请处理器实例
func NewFriendshipHandler(friendshipSvc service.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendshipSvc: friendshipSvc}
}

// SendRequest 发起好友申请
// POST /api/friendship/send
func (h *FriendshipHandler) SendRequest(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.ErrUnauthorized)
		return
	}
	var req request.SendFriendshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.friendshipSvc.SendRequest(c.Request.Context(), userId, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListReceived 等待我响应的申请列表
// GET /api/friendship/received
func (h *FriendshipHandler) ListReceived(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.ErrUnauthorized)
		return
	}
	data, err := h.friendshipSvc.ListReceived(c.Request.Context(), userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Respond 响应好友申请
// POST /api/friendship/respond
func (h *FriendshipHandler) Respond(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.ErrUnauthorized)
		return
	}
	var req request.RespondFriendshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.friendshipSvc.Respond(c.Request.Context(), userId, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
