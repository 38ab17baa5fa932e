package respond

// PrivateChatRespond 私聊会话条目
// Friend 字段按请求方视角填充为对端参与者
// 使用位置:
//   - internal/service/friendship/service.go: Respond
//   - internal/service/privatechat/service.go: ListChats
type PrivateChatRespond struct {
	Uuid            string `json:"uuid"`
	FriendId        string `json:"friend_id"`
	FriendName      string `json:"friend_name"`
	LastMsgSenderId string `json:"last_msg_sender_id"`
	LastMsg         string `json:"last_msg"`
	LastMsgAt       string `json:"last_msg_at"`
	CreatedAt       string `json:"created_at"`
}
