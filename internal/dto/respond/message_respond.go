package respond

// MessageRespond 私聊消息条目
// Uuid 是雪花 ID 的十进制字符串，避免 JSON 数字精度丢失
// 使用位置:
//   - internal/service/privatechat/service.go: SendMessage, GetMessages, MarkSeen
type MessageRespond struct {
	Uuid       string `json:"uuid"`
	ChatId     string `json:"chat_id"`
	SenderId   string `json:"sender_id"`
	ReceiverId string `json:"receiver_id"`
	Content    string `json:"content"`
	SentAt     string `json:"sent_at"`
	Status     string `json:"status"`
	StatusAt   string `json:"status_at"`
}
