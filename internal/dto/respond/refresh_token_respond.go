package respond

// RefreshTokenRespond 刷新令牌响应，轮换下发一对新令牌
// 使用位置:
//   - internal/service/user/service.go: RefreshToken
type RefreshTokenRespond struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
