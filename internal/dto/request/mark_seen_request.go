package request

// MarkSeenRequest 标记消息已读请求
// MessageId 是雪花 ID 的十进制字符串，避免 JSON 数字精度丢失
// 使用位置:
//   - internal/handler/private_chat_handler.go: PrivateChatHandler.MarkSeen
//   - internal/service/privatechat/service.go: MarkSeen
type MarkSeenRequest struct {
	MessageId string `json:"message_id" binding:"required"`
}
