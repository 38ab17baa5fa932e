package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// GroupInfo 群组信息
// 成员在建群时固定，本版本没有增删成员操作
type GroupInfo struct {
	gorm.Model

	// Uuid 群组唯一标识，G + 13位时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:群组唯一id"`

	Name   string `gorm:"column:name;type:varchar(30);not null;comment:群名称"`
	Notice string `gorm:"column:notice;type:varchar(500);comment:群简介"`

	// OwnerId 群主（建群人），OwnerName 是建群时的昵称快照
	OwnerId   string `gorm:"column:owner_id;index;type:char(20);not null;comment:群主uuid"`
	OwnerName string `gorm:"column:owner_name;type:varchar(30);not null;comment:群主昵称快照"`

	// MemberCnt 群人数（含群主）
	MemberCnt int `gorm:"column:member_cnt;not null;default:1;comment:群人数"`

	// 最后消息缓存，供群列表展示，与消息追加在同一事务里更新
	LastMsgSenderId string       `gorm:"column:last_msg_sender_id;type:char(20);comment:最后消息发送者"`
	LastMsg         string       `gorm:"column:last_msg;type:TEXT;comment:最后消息内容"`
	LastMsgAt       sql.NullTime `gorm:"column:last_msg_at;comment:最后消息时间"`
}

func (GroupInfo) TableName() string {
	return "group_info"
}
