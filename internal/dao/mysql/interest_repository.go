package mysql

import (
	"context"

	"buddies_chat_server/internal/model"

	"gorm.io/gorm"
)

type interestRepository struct {
	db *gorm.DB
}

// Create 创建兴趣标签
func (r *interestRepository) Create(ctx context.Context, interest *model.Interest) error {
	if err := r.db.WithContext(ctx).Create(interest).Error; err != nil {
		return wrapDBError(err, "创建兴趣标签")
	}
	return nil
}

// FindAll 返回全部兴趣标签，按名称排序
func (r *interestRepository) FindAll(ctx context.Context) ([]model.Interest, error) {
	var interests []model.Interest
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&interests).Error; err != nil {
		return nil, wrapDBError(err, "查询兴趣标签列表")
	}
	return interests, nil
}

// FindByUuids 批量按 UUID 查找兴趣标签
func (r *interestRepository) FindByUuids(ctx context.Context, uuids []string) ([]model.Interest, error) {
	if len(uuids) == 0 {
		return []model.Interest{}, nil
	}
	var interests []model.Interest
	if err := r.db.WithContext(ctx).Where("uuid IN ?", uuids).Find(&interests).Error; err != nil {
		return nil, wrapDBError(err, "批量查询兴趣标签")
	}
	return interests, nil
}

// CreateUserInterests 批量写入用户兴趣快照
func (r *interestRepository) CreateUserInterests(ctx context.Context, rows []model.UserInterest) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return wrapDBError(err, "写入用户兴趣")
	}
	return nil
}

// FindByUser 查找指定用户的兴趣快照
func (r *interestRepository) FindByUser(ctx context.Context, userUuid string) ([]model.UserInterest, error) {
	var rows []model.UserInterest
	if err := r.db.WithContext(ctx).Where("user_uuid = ?", userUuid).Find(&rows).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户兴趣 uuid=%s", userUuid)
	}
	return rows, nil
}
