package respond

// RelationshipRespond 查看者与目标用户的关系标志位
// 由两人之间的全部申请边推导，供前端决定显示哪个按钮
// 使用位置:
//   - internal/service/friendship/relationship.go: Resolve
//   - internal/service/user/service.go: GetUserInfo
type RelationshipRespond struct {
	CanSend          bool   `json:"can_send"`           // 可以发起申请
	HasSentPending   bool   `json:"has_sent_pending"`   // 我发出的申请还未被响应
	CanRespond       bool   `json:"can_respond"`        // 有对方发来的申请等我响应
	HasResponded     bool   `json:"has_responded"`      // 双方间已有被响应过的申请
	AreFriends       bool   `json:"are_friends"`        // 已是好友
	PendingRequestId string `json:"pending_request_id"` // 待我响应的申请 uuid，CanRespond 为真时有值
}
