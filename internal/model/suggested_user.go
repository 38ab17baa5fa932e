package model

import "database/sql"

// SuggestedUser 好友推荐查询的投影结果
// 按共同兴趣数倒序排列，MatchingCnt 即共同兴趣数
type SuggestedUser struct {
	Uuid        string
	Nickname    string
	Avatar      string
	AvgRating   sql.NullFloat64
	MatchingCnt int
}
