// Package router 提供 HTTP 路由注册
// 本文件定义好友申请相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterFriendshipRoutes 注册好友申请相关路由（需要认证）
func (rt *Router) RegisterFriendshipRoutes(rg *gin.RouterGroup) {
	friendshipGroup := rg.Group("/friendship")
	{
		friendshipGroup.POST("/send", rt.handlers.Friendship.SendRequest)
		friendshipGroup.GET("/received", rt.handlers.Friendship.ListReceived)
		friendshipGroup.POST("/respond", rt.handlers.Friendship.Respond)
	}
}
