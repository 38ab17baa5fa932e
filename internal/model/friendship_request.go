// Package model 定义数据库实体模型
// 本文件定义好友申请模型：一条有向边，记录一次申请及其结果
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// 好友申请状态
// unresponded 为初始态，accepted/rejected 对该行都是终态
// 行从不删除，历史 rejected/accepted 行作为审计记录保留，
// 两人之间的关系由读取全部边推导，而不是读单行
const (
	FriendshipUnresponded = "unresponded"
	FriendshipAccepted    = "accepted"
	FriendshipRejected    = "rejected"
)

// FriendshipRequest 好友申请
// sender/receiver 的姓名和邮箱是建边时拍的快照：
// 即使用户之后改名，这条申请上的展示也保持稳定（有意保留，接受陈旧风险）
type FriendshipRequest struct {
	gorm.Model

	// Uuid 申请唯一标识，F + 13位时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:申请唯一id"`

	SenderId    string `gorm:"column:sender_id;index;type:char(20);not null;comment:发起人ID"`
	SenderName  string `gorm:"column:sender_name;type:varchar(30);not null;comment:发起人昵称快照"`
	SenderEmail string `gorm:"column:sender_email;type:varchar(60);not null;comment:发起人邮箱快照"`

	ReceiverId    string `gorm:"column:receiver_id;index;type:char(20);not null;comment:接收人ID"`
	ReceiverName  string `gorm:"column:receiver_name;type:varchar(30);not null;comment:接收人昵称快照"`
	ReceiverEmail string `gorm:"column:receiver_email;type:varchar(60);not null;comment:接收人邮箱快照"`

	// Status 申请状态，见上方常量
	Status string `gorm:"column:status;index;type:char(12);not null;comment:申请状态"`

	// MatchingInterests 申请创建时双方兴趣交集的 JSON 快照
	// 序列化为 []InterestSnapshot
	MatchingInterests string `gorm:"column:matching_interests;type:TEXT;comment:兴趣交集快照"`

	// SenderAvgRating 申请创建时发起人评分均值的快照
	SenderAvgRating sql.NullFloat64 `gorm:"column:sender_avg_rating;comment:发起人评分快照"`
}

func (FriendshipRequest) TableName() string {
	return "friendship_request"
}

// InterestSnapshot MatchingInterests 字段里存的兴趣交集条目
type InterestSnapshot struct {
	Uuid string `json:"uuid"`
	Name string `json:"name"`
}
