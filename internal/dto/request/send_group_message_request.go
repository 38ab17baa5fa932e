package request

// SendGroupMessageRequest 发送群消息请求
// 使用位置:
//   - internal/handler/group_handler.go: GroupHandler.SendGroupMessage
//   - internal/service/group/service.go: SendGroupMessage
type SendGroupMessageRequest struct {
	GroupId string `json:"group_id" binding:"required"`
	Content string `json:"content" binding:"required,max=2000"`
}
