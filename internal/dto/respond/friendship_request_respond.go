package respond

// FriendshipRequestRespond 好友申请条目
// 发起人信息和兴趣交集都是建边时的快照
// 使用位置:
//   - internal/service/friendship/service.go: SendRequest, ListReceived
type FriendshipRequestRespond struct {
	Uuid              string            `json:"uuid"`
	SenderId          string            `json:"sender_id"`
	SenderName        string            `json:"sender_name"`
	SenderEmail       string            `json:"sender_email"`
	SenderAvgRating   *float64          `json:"sender_avg_rating"`
	ReceiverId        string            `json:"receiver_id"`
	ReceiverName      string            `json:"receiver_name"`
	Status            string            `json:"status"`
	MatchingInterests []InterestRespond `json:"matching_interests"`
	CreatedAt         string            `json:"created_at"`
}
