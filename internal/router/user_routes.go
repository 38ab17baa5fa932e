// Package router 提供 HTTP 路由注册
// 本文件定义用户和兴趣标签相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes 注册公开路由（无需认证）
func (rt *Router) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/user/register", rt.handlers.User.Register)
	rg.POST("/user/login", rt.handlers.User.Login)
	rg.POST("/user/refreshToken", rt.handlers.User.RefreshToken)
	// 注册页需要展示兴趣标签，所以放开认证
	rg.GET("/interest/list", rt.handlers.Interest.ListInterests)
}

// RegisterUserRoutes 注册用户相关路由（需要认证）
func (rt *Router) RegisterUserRoutes(rg *gin.RouterGroup) {
	userGroup := rg.Group("/user")
	{
		userGroup.GET("/info/:uuid", rt.handlers.User.GetUserInfo)
		userGroup.GET("/suggested", rt.handlers.User.GetSuggestedUsers)
		userGroup.POST("/rate", rt.handlers.User.RateUser)
	}
}
