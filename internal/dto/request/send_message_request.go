package request

// SendMessageRequest 发送私聊消息请求
// 使用位置:
//   - internal/handler/private_chat_handler.go: PrivateChatHandler.SendMessage
//   - internal/service/privatechat/service.go: SendMessage
type SendMessageRequest struct {
	ChatId  string `json:"chat_id" binding:"required"`
	Content string `json:"content" binding:"required,max=2000"`
}
