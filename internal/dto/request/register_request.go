package request

// RegisterRequest 用户注册请求
// 使用位置:
//   - internal/handler/user_handler.go: UserHandler.Register
//   - internal/service/user/service.go: Register
type RegisterRequest struct {
	Email         string   `json:"email" binding:"required,email"`
	Password      string   `json:"password" binding:"required,min=6"`
	Nickname      string   `json:"nickname" binding:"required,max=30"`
	Avatar        string   `json:"avatar"`
	Signature     string   `json:"signature" binding:"max=200"`
	InterestUuids []string `json:"interest_uuids"`
}
