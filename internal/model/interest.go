package model

import (
	"gorm.io/gorm"
)

// Interest 兴趣标签，全局参照数据
type Interest struct {
	gorm.Model
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:兴趣标签唯一id"`
	Name string `gorm:"column:name;uniqueIndex;type:varchar(50);not null;comment:标签名"`
}

func (Interest) TableName() string {
	return "interest"
}

// UserInterest 用户与兴趣标签的关联
// InterestName 是注册时拍下的快照副本，之后标签即使改名，用户资料上的展示也保持稳定
type UserInterest struct {
	gorm.Model
	UserUuid     string `gorm:"column:user_uuid;index;type:char(20);not null;comment:用户ID"`
	InterestUuid string `gorm:"column:interest_uuid;index;type:char(20);not null;comment:兴趣标签ID"`
	InterestName string `gorm:"column:interest_name;type:varchar(50);not null;comment:标签名快照"`
}

func (UserInterest) TableName() string {
	return "user_interest"
}
