package respond

// RespondFriendshipRespond 响应好友申请的结果
// 接受时附带新建会话，拒绝时 Chat 为 nil
// 使用位置:
//   - internal/service/friendship/service.go: Respond
type RespondFriendshipRespond struct {
	RequestId string              `json:"request_id"`
	Status    string              `json:"status"`
	Chat      *PrivateChatRespond `json:"chat,omitempty"`
}
