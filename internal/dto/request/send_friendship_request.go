package request

// SendFriendshipRequest 发起好友申请请求
// 使用位置:
//   - internal/handler/friendship_handler.go: FriendshipHandler.SendRequest
//   - internal/service/friendship/service.go: SendRequest
type SendFriendshipRequest struct {
	ReceiverId string `json:"receiver_id" binding:"required"`
}
