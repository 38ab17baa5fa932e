package request

// RateUserRequest 好友评分请求
// 使用位置:
//   - internal/handler/user_handler.go: UserHandler.RateUser
//   - internal/service/user/service.go: RateUser
type RateUserRequest struct {
	RatedId string `json:"rated_id" binding:"required"`
	Value   int8   `json:"value" binding:"required,min=1,max=5"`
}
