package friendship

import (
	"buddies_chat_server/internal/model"
)

// Relationship 查看者与另一用户的关系标志位
// 由两人之间的全部申请边推导出来，纯函数计算，不触库
type Relationship struct {
	CanSend          bool   // 可以发起新申请
	HasSentPending   bool   // 我发出的申请还未被响应
	CanRespond       bool   // 有对方发来的申请等我响应
	HasResponded     bool   // 双方间已有被响应过的申请
	AreFriends       bool   // 已是好友
	PendingRequestId string // 待我响应的申请 uuid
}

// Resolve 从历史边推导查看者视角的关系
// rows 是两人之间双向的全部申请（任意条数、任意状态均合法）：
//   - 任意一条 accepted 即为好友，好友关系不因后续边而失效
//   - 任一方向存在 unresponded 边时不允许再发起
//   - rejected 是该行的终态，但不阻止之后重新申请
func Resolve(viewerId string, rows []model.FriendshipRequest) Relationship {
	var rel Relationship
	for i := range rows {
		row := &rows[i]
		switch row.Status {
		case model.FriendshipAccepted:
			rel.AreFriends = true
			rel.HasResponded = true
		case model.FriendshipRejected:
			rel.HasResponded = true
		case model.FriendshipUnresponded:
			if row.SenderId == viewerId {
				rel.HasSentPending = true
			} else if row.ReceiverId == viewerId {
				rel.CanRespond = true
				rel.PendingRequestId = row.Uuid
			}
		}
	}
	rel.CanSend = !rel.AreFriends && !rel.HasSentPending && !rel.CanRespond
	return rel
}
