package respond

// GroupRespond 群组条目
// 使用位置:
//   - internal/service/group/service.go: CreateGroup, ListGroups
type GroupRespond struct {
	Uuid            string               `json:"uuid"`
	Name            string               `json:"name"`
	Notice          string               `json:"notice"`
	OwnerId         string               `json:"owner_id"`
	OwnerName       string               `json:"owner_name"`
	MemberCnt       int                  `json:"member_cnt"`
	Members         []GroupMemberRespond `json:"members,omitempty"`
	LastMsgSenderId string               `json:"last_msg_sender_id"`
	LastMsg         string               `json:"last_msg"`
	LastMsgAt       string               `json:"last_msg_at"`
	CreatedAt       string               `json:"created_at"`
}

// GroupMemberRespond 群成员条目，建群时的快照
type GroupMemberRespond struct {
	UserUuid string `json:"user_uuid"`
	UserName string `json:"user_name"`
	Avatar   string `json:"avatar"`
	Role     int8   `json:"role"`
}
