package respond

// GroupMessageRespond 群消息条目
// 使用位置:
//   - internal/service/group/service.go: SendGroupMessage, GetGroupMessages
type GroupMessageRespond struct {
	Uuid       string `json:"uuid"`
	GroupId    string `json:"group_id"`
	SenderId   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Content    string `json:"content"`
	SentAt     string `json:"sent_at"`
}
