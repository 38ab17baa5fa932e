package respond

// LoginRespond 用户登录响应
// 使用位置:
//   - internal/service/user/service.go: Login
type LoginRespond struct {
	Uuid         string   `json:"uuid"`
	Nickname     string   `json:"nickname"`
	Email        string   `json:"email"`
	Avatar       string   `json:"avatar"`
	Signature    string   `json:"signature"`
	AvgRating    *float64 `json:"avg_rating"`
	RaterCnt     int      `json:"rater_cnt"`
	IsAdmin      int8     `json:"is_admin"`
	Status       int8     `json:"status"`
	CreatedAt    string   `json:"created_at"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}
