package model

import (
	"time"

	"gorm.io/gorm"
)

// GroupMessage 群聊消息，按群追加写入，从不修改
type GroupMessage struct {
	gorm.Model

	// Uuid 消息唯一标识，雪花算法生成的 int64
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// GroupId 所属群组 uuid
	GroupId string `gorm:"column:group_id;index;type:char(20);not null;comment:群组uuid"`

	SenderId   string `gorm:"column:sender_id;index;type:char(20);not null;comment:发送者uuid"`
	SenderName string `gorm:"column:sender_name;type:varchar(30);not null;comment:发送者昵称快照"`

	Content string `gorm:"column:content;type:TEXT;not null;comment:消息内容"`

	// SentAt 发送时间，分页按它倒序
	SentAt time.Time `gorm:"column:sent_at;index;not null;comment:发送时间"`
}

func (GroupMessage) TableName() string {
	return "group_message"
}
