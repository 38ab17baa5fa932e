package model

import (
	"time"

	"gorm.io/gorm"
)

// 消息投递状态
// delivered 为落库初始态，seen 由接收方之后标记，此外行不再变化
const (
	MessageDelivered = "delivered"
	MessageSeen      = "seen"
)

// PrivateChatMessage 私聊消息，按会话追加写入
type PrivateChatMessage struct {
	gorm.Model

	// Uuid 消息唯一标识，雪花算法生成的 int64
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// ChatId 所属会话 uuid
	ChatId string `gorm:"column:chat_id;index;type:char(20);not null;comment:会话uuid"`

	SenderId   string `gorm:"column:sender_id;index;type:char(20);not null;comment:发送者uuid"`
	ReceiverId string `gorm:"column:receiver_id;index;type:char(20);not null;comment:接收者uuid"`

	// Content 消息文本内容
	Content string `gorm:"column:content;type:TEXT;not null;comment:消息内容"`

	// SentAt 发送时间，分页按它倒序
	SentAt time.Time `gorm:"column:sent_at;index;not null;comment:发送时间"`

	// Status 投递状态，见上方常量；StatusAt 记录状态变化时间
	Status   string    `gorm:"column:status;type:char(10);not null;comment:投递状态"`
	StatusAt time.Time `gorm:"column:status_at;not null;comment:状态变化时间"`
}

func (PrivateChatMessage) TableName() string {
	return "private_chat_message"
}
