package model

import "gorm.io/gorm"

// Rating 评分，(rater, rated) 对为自然键
// 同一打分人再次评分是覆盖，不是追加；均值和人数聚合后缓存到 UserInfo 上
type Rating struct {
	gorm.Model
	RaterId string `gorm:"column:rater_id;index:idx_rater_rated,unique;type:char(20);not null;comment:打分人uuid"`
	RatedId string `gorm:"column:rated_id;index:idx_rater_rated,unique;index;type:char(20);not null;comment:被评人uuid"`
	Value   int8   `gorm:"column:value;not null;comment:评分1-5"`
}

func (Rating) TableName() string {
	return "rating"
}
