// Package router 提供 HTTP 路由注册
// 本文件定义私聊会话和消息相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes 注册私聊相关路由（需要认证）
func (rt *Router) RegisterChatRoutes(rg *gin.RouterGroup) {
	chatGroup := rg.Group("/chat")
	{
		chatGroup.POST("/message", rt.handlers.PrivateChat.SendMessage)
		chatGroup.POST("/markSeen", rt.handlers.PrivateChat.MarkSeen)
		chatGroup.GET("/list", rt.handlers.PrivateChat.ListChats)
		chatGroup.GET("/:chatId/messages", rt.handlers.PrivateChat.GetMessages)
	}
}
