package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// PrivateChat 私聊会话容器
// 由参与者对唯一确定，在好友申请转为 accepted 时恰好创建一次
// 身份（参与者对）创建后不可变，之后只更新最后消息缓存
type PrivateChat struct {
	gorm.Model

	// Uuid 会话唯一标识，C + 13位时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:会话唯一id"`

	UserOneId   string `gorm:"column:user_one_id;index;type:char(20);not null;comment:参与者1(原申请发起人)"`
	UserOneName string `gorm:"column:user_one_name;type:varchar(30);not null;comment:参与者1昵称快照"`
	UserTwoId   string `gorm:"column:user_two_id;index;type:char(20);not null;comment:参与者2(原申请接收人)"`
	UserTwoName string `gorm:"column:user_two_name;type:varchar(30);not null;comment:参与者2昵称快照"`

	// 最后消息缓存，供会话列表展示，与消息追加在同一事务里更新
	LastMsgSenderId string       `gorm:"column:last_msg_sender_id;type:char(20);comment:最后消息发送者"`
	LastMsg         string       `gorm:"column:last_msg;type:TEXT;comment:最后消息内容"`
	LastMsgAt       sql.NullTime `gorm:"column:last_msg_at;comment:最后消息时间"`
}

func (PrivateChat) TableName() string {
	return "private_chat"
}

// HasParticipant 判断用户是否是会话参与者
func (p *PrivateChat) HasParticipant(userId string) bool {
	return p.UserOneId == userId || p.UserTwoId == userId
}

// Counterpart 返回对端参与者 uuid，调用前须先确认 userId 是参与者
func (p *PrivateChat) Counterpart(userId string) string {
	if p.UserOneId == userId {
		return p.UserTwoId
	}
	return p.UserOneId
}
