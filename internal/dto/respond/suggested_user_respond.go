package respond

// SuggestedUserRespond 好友推荐条目，按共同兴趣数倒序返回
// 使用位置:
//   - internal/service/user/service.go: GetSuggestedUsers
type SuggestedUserRespond struct {
	Uuid        string   `json:"uuid"`
	Nickname    string   `json:"nickname"`
	Avatar      string   `json:"avatar"`
	AvgRating   *float64 `json:"avg_rating"`
	MatchingCnt int      `json:"matching_cnt"`
}
