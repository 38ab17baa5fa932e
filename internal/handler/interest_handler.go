// Package handler 提供 HTTP 请求处理器
// 本文件处理兴趣标签相关的 API 请求
package handler

import (
	"buddies_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// InterestHandler 兴趣标签请求处理器
type InterestHandler struct {
	interestSvc service.InterestService
}

// NewInterestHandler 创建兴趣标签处理器实例
func NewInterestHandler(interestSvc service.InterestService) *InterestHandler {
	return &InterestHandler{interestSvc: interestSvc}
}

// ListInterests 全部兴趣标签，注册页用，无需登录
// GET /api/interest/list
func (h *InterestHandler) ListInterests(c *gin.Context) {
	data, err := h.interestSvc.ListInterests(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
