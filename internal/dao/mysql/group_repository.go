package mysql

import (
	"context"
	"time"

	"buddies_chat_server/internal/model"

	"gorm.io/gorm"
)

type groupRepository struct {
	db *gorm.DB
}

// Create 创建群组
func (r *groupRepository) Create(ctx context.Context, group *model.GroupInfo) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return wrapDBError(err, "创建群组")
	}
	return nil
}

// FindByUuid 按 UUID 查找群组
func (r *groupRepository) FindByUuid(ctx context.Context, uuid string) (*model.GroupInfo, error) {
	var group model.GroupInfo
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&group).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群组 uuid=%s", uuid)
	}
	return &group, nil
}

// FindByUuids 批量按 UUID 查找群组，最近有消息的在前
func (r *groupRepository) FindByUuids(ctx context.Context, uuids []string) ([]model.GroupInfo, error) {
	if len(uuids) == 0 {
		return []model.GroupInfo{}, nil
	}
	var groups []model.GroupInfo
	err := r.db.WithContext(ctx).
		Where("uuid IN ?", uuids).
		Order("last_msg_at DESC, created_at DESC").
		Find(&groups).Error
	if err != nil {
		return nil, wrapDBError(err, "批量查询群组")
	}
	return groups, nil
}

// UpdateLastMessage 更新群最后消息缓存，与消息落库在同一事务里调用
func (r *groupRepository) UpdateLastMessage(ctx context.Context, uuid, senderId, content string, at time.Time) error {
	updates := map[string]interface{}{
		"last_msg_sender_id": senderId,
		"last_msg":           content,
		"last_msg_at":        at,
	}
	if err := r.db.WithContext(ctx).Model(&model.GroupInfo{}).Where("uuid = ?", uuid).Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "更新群最后消息 uuid=%s", uuid)
	}
	return nil
}

type groupMemberRepository struct {
	db *gorm.DB
}

// CreateBatch 批量写入群成员，建群时一次性固定
func (r *groupMemberRepository) CreateBatch(ctx context.Context, members []model.GroupMember) error {
	if len(members) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&members).Error; err != nil {
		return wrapDBError(err, "批量写入群成员")
	}
	return nil
}

// FindByGroupUuid 查找群的全部成员
func (r *groupMemberRepository) FindByGroupUuid(ctx context.Context, groupUuid string) ([]model.GroupMember, error) {
	var members []model.GroupMember
	if err := r.db.WithContext(ctx).Where("group_uuid = ?", groupUuid).Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群成员 group=%s", groupUuid)
	}
	return members, nil
}

// FindGroupUuidsByUser 查找用户加入的全部群 uuid
func (r *groupMemberRepository) FindGroupUuidsByUser(ctx context.Context, userUuid string) ([]string, error) {
	var uuids []string
	err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("user_uuid = ?", userUuid).
		Pluck("group_uuid", &uuids).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询用户群列表 uuid=%s", userUuid)
	}
	return uuids, nil
}

type groupMessageRepository struct {
	db *gorm.DB
}

// Create 追加群消息
func (r *groupMessageRepository) Create(ctx context.Context, msg *model.GroupMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return wrapDBError(err, "写入群消息")
	}
	return nil
}

// FindPageByGroupId 按发送时间倒序分页，与私聊消息分页同一套规则
func (r *groupMessageRepository) FindPageByGroupId(ctx context.Context, groupId string, limit, offset int) ([]model.GroupMessage, error) {
	var msgs []model.GroupMessage
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupId).
		Order("sent_at DESC, uuid DESC").
		Offset(offset).
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "分页查询群消息 group_id=%s", groupId)
	}
	return msgs, nil
}
