package mysql

import (
	"context"
	"time"

	"buddies_chat_server/internal/model"

	"gorm.io/gorm"
)

type privateChatRepository struct {
	db *gorm.DB
}

// Create 创建私聊会话
func (r *privateChatRepository) Create(ctx context.Context, chat *model.PrivateChat) error {
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return wrapDBError(err, "创建私聊会话")
	}
	return nil
}

// FindByUuid 按 UUID 查找会话
func (r *privateChatRepository) FindByUuid(ctx context.Context, uuid string) (*model.PrivateChat, error) {
	var chat model.PrivateChat
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&chat).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询私聊会话 uuid=%s", uuid)
	}
	return &chat, nil
}

// FindByUser 返回用户参与的全部会话，最近有消息的在前
func (r *privateChatRepository) FindByUser(ctx context.Context, userId string) ([]model.PrivateChat, error) {
	var chats []model.PrivateChat
	err := r.db.WithContext(ctx).
		Where("user_one_id = ? OR user_two_id = ?", userId, userId).
		Order("last_msg_at DESC, created_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询用户会话列表 uuid=%s", userId)
	}
	return chats, nil
}

// CountBetweenUserAndUsers 统计 userId 与 others 中多少人之间存在会话
// 会话存在即是好友关系的证明，建群校验依赖它
func (r *privateChatRepository) CountBetweenUserAndUsers(ctx context.Context, userId string, others []string) (int64, error) {
	if len(others) == 0 {
		return 0, nil
	}
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.PrivateChat{}).
		Where("(user_one_id = ? AND user_two_id IN ?) OR (user_two_id = ? AND user_one_id IN ?)",
			userId, others, userId, others).
		Count(&cnt).Error
	if err != nil {
		return 0, wrapDBError(err, "统计好友会话数")
	}
	return cnt, nil
}

// UpdateLastMessage 更新最后消息缓存，与消息落库在同一事务里调用
func (r *privateChatRepository) UpdateLastMessage(ctx context.Context, uuid, senderId, content string, at time.Time) error {
	updates := map[string]interface{}{
		"last_msg_sender_id": senderId,
		"last_msg":           content,
		"last_msg_at":        at,
	}
	if err := r.db.WithContext(ctx).Model(&model.PrivateChat{}).Where("uuid = ?", uuid).Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "更新会话最后消息 uuid=%s", uuid)
	}
	return nil
}

type privateChatMessageRepository struct {
	db *gorm.DB
}

// Create 追加私聊消息
func (r *privateChatMessageRepository) Create(ctx context.Context, msg *model.PrivateChatMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return wrapDBError(err, "写入私聊消息")
	}
	return nil
}

// FindByUuid 按雪花 ID 查找消息
func (r *privateChatMessageRepository) FindByUuid(ctx context.Context, uuid int64) (*model.PrivateChatMessage, error) {
	var msg model.PrivateChatMessage
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&msg).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询私聊消息 uuid=%d", uuid)
	}
	return &msg, nil
}

// FindPageByChatId 按发送时间倒序分页：先 offset 再 limit，最新的页在前
// uuid 做第二排序键，保证同一毫秒的消息分页稳定
func (r *privateChatMessageRepository) FindPageByChatId(ctx context.Context, chatId string, limit, offset int) ([]model.PrivateChatMessage, error) {
	var msgs []model.PrivateChatMessage
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatId).
		Order("sent_at DESC, uuid DESC").
		Offset(offset).
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "分页查询私聊消息 chat_id=%s", chatId)
	}
	return msgs, nil
}

// UpdateStatus 更新消息投递状态
func (r *privateChatMessageRepository) UpdateStatus(ctx context.Context, uuid int64, status string, at time.Time) error {
	updates := map[string]interface{}{
		"status":    status,
		"status_at": at,
	}
	if err := r.db.WithContext(ctx).Model(&model.PrivateChatMessage{}).Where("uuid = ?", uuid).Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "更新消息状态 uuid=%d", uuid)
	}
	return nil
}
