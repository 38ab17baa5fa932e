package mysql

import (
	"context"

	"buddies_chat_server/internal/model"

	"gorm.io/gorm"
)

type friendshipRepository struct {
	db *gorm.DB
}

// Create 创建好友申请
func (r *friendshipRepository) Create(ctx context.Context, req *model.FriendshipRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return wrapDBError(err, "创建好友申请")
	}
	return nil
}

// Update 保存好友申请（状态翻转）
func (r *friendshipRepository) Update(ctx context.Context, req *model.FriendshipRequest) error {
	if err := r.db.WithContext(ctx).Save(req).Error; err != nil {
		return wrapDBErrorf(err, "更新好友申请 uuid=%s", req.Uuid)
	}
	return nil
}

// FindByUuid 按 UUID 查找好友申请
func (r *friendshipRepository) FindByUuid(ctx context.Context, uuid string) (*model.FriendshipRequest, error) {
	var req model.FriendshipRequest
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&req).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友申请 uuid=%s", uuid)
	}
	return &req, nil
}

// FindBetween 返回两人之间的全部历史边（双向、所有状态），按创建时间升序
// 两人的关系由这些边整体推导，不读单行
func (r *friendshipRepository) FindBetween(ctx context.Context, userOneId, userTwoId string) ([]model.FriendshipRequest, error) {
	var reqs []model.FriendshipRequest
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userOneId, userTwoId, userTwoId, userOneId).
		Order("created_at ASC, id ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, wrapDBError(err, "查询两人之间的好友申请")
	}
	return reqs, nil
}

// FindPendingByReceiver 查找指定接收人的全部未响应申请，最新的在前
func (r *friendshipRepository) FindPendingByReceiver(ctx context.Context, receiverId string) ([]model.FriendshipRequest, error) {
	var reqs []model.FriendshipRequest
	err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", receiverId, model.FriendshipUnresponded).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询收到的好友申请 uuid=%s", receiverId)
	}
	return reqs, nil
}

// FindAcceptedBetween 查找两人之间任意方向的 accepted 边
func (r *friendshipRepository) FindAcceptedBetween(ctx context.Context, userOneId, userTwoId string) (*model.FriendshipRequest, error) {
	var req model.FriendshipRequest
	err := r.db.WithContext(ctx).
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status = ?",
			userOneId, userTwoId, userTwoId, userOneId, model.FriendshipAccepted).
		First(&req).Error
	if err != nil {
		return nil, wrapDBError(err, "查询已接受的好友关系")
	}
	return &req, nil
}
