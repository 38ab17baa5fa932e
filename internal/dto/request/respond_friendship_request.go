package request

// RespondFriendshipRequest 响应好友申请请求
// 使用位置:
//   - internal/handler/friendship_handler.go: FriendshipHandler.Respond
//   - internal/service/friendship/service.go: Respond
type RespondFriendshipRequest struct {
	RequestId string `json:"request_id" binding:"required"`
	Action    string `json:"action" binding:"required,oneof=accept reject"`
}
