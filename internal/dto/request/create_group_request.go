package request

// CreateGroupRequest 创建群聊请求
// MemberIds 不包含建群人自己，且每个成员都必须是建群人的好友
// 使用位置:
//   - internal/handler/group_handler.go: GroupHandler.CreateGroup
//   - internal/service/group/service.go: CreateGroup
type CreateGroupRequest struct {
	Name      string   `json:"name" binding:"required,max=30"`
	Notice    string   `json:"notice" binding:"max=500"`
	MemberIds []string `json:"member_ids" binding:"required,min=1"`
}
