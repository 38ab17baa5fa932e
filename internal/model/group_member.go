package model

import "gorm.io/gorm"

// 群成员角色
const (
	GroupRoleMember int8 = 1
	GroupRoleOwner  int8 = 3
)

// GroupMember 群成员关联表
// 昵称/邮箱/头像是建群时拍下的成员快照，群资料展示不做实时 join
type GroupMember struct {
	gorm.Model
	GroupUuid string `gorm:"column:group_uuid;index;type:char(20);not null;comment:群组ID"`
	UserUuid  string `gorm:"column:user_uuid;index;type:char(20);not null;comment:用户ID"`
	UserName  string `gorm:"column:user_name;type:varchar(30);not null;comment:昵称快照"`
	UserEmail string `gorm:"column:user_email;type:varchar(60);not null;comment:邮箱快照"`
	Avatar    string `gorm:"column:avatar;type:varchar(255);comment:头像快照"`
	Role      int8   `gorm:"column:role;not null;default:1;comment:1普通成员 3群主"`
}

func (GroupMember) TableName() string {
	return "group_member"
}
