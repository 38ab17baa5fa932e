// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"buddies_chat_server/internal/handler"
	"buddies_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器，持有 Handler 聚合对象
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
// 公开接口直接挂在 /api 下，其余接口统一套 JWT 认证中间件
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// 公开接口 (无需认证)
	rt.RegisterPublicRoutes(api)

	// 需要认证的接口
	authed := api.Group("")
	authed.Use(middleware.JWTAuth())
	{
		rt.RegisterUserRoutes(authed)
		rt.RegisterFriendshipRoutes(authed)
		rt.RegisterChatRoutes(authed)
		rt.RegisterGroupRoutes(authed)
	}

	// WebSocket 握手自己校验 token（浏览器 WebSocket 设不了请求头）
	rt.RegisterWebSocketRoutes(r)
}
