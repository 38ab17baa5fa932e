package respond

// RegisterRespond 用户注册响应
// 注册成功即视为登录，直接下发令牌
// 使用位置:
//   - internal/service/user/service.go: Register
type RegisterRespond struct {
	Uuid         string            `json:"uuid"`
	Nickname     string            `json:"nickname"`
	Email        string            `json:"email"`
	Avatar       string            `json:"avatar"`
	Signature    string            `json:"signature"`
	Interests    []InterestRespond `json:"interests"`
	CreatedAt    string            `json:"created_at"`
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
}
