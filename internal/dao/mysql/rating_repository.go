package mysql

import (
	"context"

	"buddies_chat_server/internal/model"

	"gorm.io/gorm"
)

type ratingRepository struct {
	db *gorm.DB
}

// FindByRaterAndRated 查找 (打分人, 被评人) 对应的评分行
func (r *ratingRepository) FindByRaterAndRated(ctx context.Context, raterId, ratedId string) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.WithContext(ctx).
		Where("rater_id = ? AND rated_id = ?", raterId, ratedId).
		First(&rating).Error
	if err != nil {
		return nil, wrapDBError(err, "查询评分")
	}
	return &rating, nil
}

// Create 创建评分
func (r *ratingRepository) Create(ctx context.Context, rating *model.Rating) error {
	if err := r.db.WithContext(ctx).Create(rating).Error; err != nil {
		return wrapDBError(err, "创建评分")
	}
	return nil
}

// Update 覆盖已有评分
func (r *ratingRepository) Update(ctx context.Context, rating *model.Rating) error {
	if err := r.db.WithContext(ctx).Save(rating).Error; err != nil {
		return wrapDBError(err, "更新评分")
	}
	return nil
}

// AggregateByRated 对被评人的全部评分行求均值和行数
// 均值基于评分行本身重算，不做增量维护，覆盖式评分下不会算错
func (r *ratingRepository) AggregateByRated(ctx context.Context, ratedId string) (float64, int64, error) {
	var result struct {
		Avg float64
		Cnt int64
	}
	err := r.db.WithContext(ctx).Model(&model.Rating{}).
		Select("COALESCE(AVG(value), 0) AS avg, COUNT(*) AS cnt").
		Where("rated_id = ?", ratedId).
		Scan(&result).Error
	if err != nil {
		return 0, 0, wrapDBErrorf(err, "聚合评分 rated=%s", ratedId)
	}
	return result.Avg, result.Cnt, nil
}
