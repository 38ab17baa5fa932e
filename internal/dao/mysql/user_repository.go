package mysql

import (
	"context"
	"database/sql"

	"buddies_chat_server/internal/model"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// Create 创建新用户
func (r *userRepository) Create(ctx context.Context, user *model.UserInfo) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return wrapDBError(err, "创建用户")
	}
	return nil
}

// FindByUuid 按 UUID 查找用户
func (r *userRepository) FindByUuid(ctx context.Context, uuid string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&user).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 uuid=%s", uuid)
	}
	return &user, nil
}

// FindByEmail 按邮箱查找用户（登录和注册查重）
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 email=%s", email)
	}
	return &user, nil
}

// FindByUuids 批量按 UUID 查找用户
func (r *userRepository) FindByUuids(ctx context.Context, uuids []string) ([]model.UserInfo, error) {
	if len(uuids) == 0 {
		return []model.UserInfo{}, nil
	}
	var users []model.UserInfo
	if err := r.db.WithContext(ctx).Where("uuid IN ?", uuids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户")
	}
	return users, nil
}

// UpdateRating 回写评分聚合缓存
func (r *userRepository) UpdateRating(ctx context.Context, uuid string, avg sql.NullFloat64, raterCnt int) error {
	updates := map[string]interface{}{
		"avg_rating": avg,
		"rater_cnt":  raterCnt,
	}
	if err := r.db.WithContext(ctx).Model(&model.UserInfo{}).Where("uuid = ?", uuid).Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "更新评分缓存 uuid=%s", uuid)
	}
	return nil
}

// FindSuggested 查找与指定用户至少有一个共同兴趣的其他用户
// 按共同兴趣数倒序；对应原来在文档库上的 unwind + group 聚合
func (r *userRepository) FindSuggested(ctx context.Context, userUuid string, interestUuids []string) ([]model.SuggestedUser, error) {
	if len(interestUuids) == 0 {
		return []model.SuggestedUser{}, nil
	}
	var rows []model.SuggestedUser
	err := r.db.WithContext(ctx).
		Table("user_interest AS ui").
		Select("u.uuid AS uuid, u.nickname AS nickname, u.avatar AS avatar, u.avg_rating AS avg_rating, COUNT(*) AS matching_cnt").
		Joins("JOIN user_info u ON u.uuid = ui.user_uuid AND u.deleted_at IS NULL").
		Where("ui.interest_uuid IN ? AND ui.user_uuid <> ? AND ui.deleted_at IS NULL", interestUuids, userUuid).
		Group("u.uuid, u.nickname, u.avatar, u.avg_rating").
		Order("matching_cnt DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询推荐用户 uuid=%s", userUuid)
	}
	return rows, nil
}
