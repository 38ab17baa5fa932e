package respond

// GetUserInfoRespond 用户主页响应
// Relationship 按查看者视角计算，查看自己时各标志位全为 false
// 使用位置:
//   - internal/service/user/service.go: GetUserInfo
type GetUserInfoRespond struct {
	Uuid         string              `json:"uuid"`
	Nickname     string              `json:"nickname"`
	Email        string              `json:"email"`
	Avatar       string              `json:"avatar"`
	Signature    string              `json:"signature"`
	AvgRating    *float64            `json:"avg_rating"`
	RaterCnt     int                 `json:"rater_cnt"`
	Interests    []InterestRespond   `json:"interests"`
	CreatedAt    string              `json:"created_at"`
	Relationship RelationshipRespond `json:"relationship"`
}
