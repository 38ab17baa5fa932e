// Package router 提供 HTTP 路由注册
// 本文件定义群组相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterGroupRoutes 注册群组相关路由（需要认证）
func (rt *Router) RegisterGroupRoutes(rg *gin.RouterGroup) {
	groupGroup := rg.Group("/group")
	{
		groupGroup.POST("/create", rt.handlers.Group.CreateGroup)
		groupGroup.POST("/message", rt.handlers.Group.SendGroupMessage)
		groupGroup.GET("/list", rt.handlers.Group.ListGroups)
		groupGroup.GET("/:groupId/messages", rt.handlers.Group.GetGroupMessages)
	}
}
