package request

// GetMessagesRequest 分页拉取消息请求（query 参数）
// 私聊和群聊共用同一套分页参数
// 使用位置:
//   - internal/handler/private_chat_handler.go: PrivateChatHandler.GetMessages
//   - internal/handler/group_handler.go: GroupHandler.GetGroupMessages
type GetMessagesRequest struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}
