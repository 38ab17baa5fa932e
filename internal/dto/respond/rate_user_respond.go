package respond

// RateUserRespond 评分结果，返回被评人最新的聚合值
// 使用位置:
//   - internal/service/user/service.go: RateUser
type RateUserRespond struct {
	RatedId   string  `json:"rated_id"`
	AvgRating float64 `json:"avg_rating"`
	RaterCnt  int     `json:"rater_cnt"`
}
