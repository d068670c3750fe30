package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"snaproll/backend/internal/model"
)

// RateLimitBucketRepository 限流桶数据访问接口
// 桶从不主动清理：窗口过滤由调用方完成，陈旧桶随新桶产生自然被忽略
type RateLimitBucketRepository interface {
	Create(ctx context.Context, bucket *model.RateLimitBucket) error
	// GetFreshest 返回 (actor, key) 下 window_start 最新的一个桶
	GetFreshest(ctx context.Context, actorID, key string) (*model.RateLimitBucket, error)
	// GetBlocked 返回 (actor, key) 下任何 blocked_until 未过期的桶
	GetBlocked(ctx context.Context, actorID, key string, now time.Time) (*model.RateLimitBucket, error)
	Update(ctx context.Context, bucket *model.RateLimitBucket) error
}

type rateLimitBucketRepo struct {
	db *gorm.DB
}

// NewRateLimitBucketRepo 创建 RateLimitBucketRepository 实例
func NewRateLimitBucketRepo(db *gorm.DB) RateLimitBucketRepository {
	return &rateLimitBucketRepo{db: db}
}

func (r *rateLimitBucketRepo) Create(ctx context.Context, bucket *model.RateLimitBucket) error {
	return r.db.WithContext(ctx).Create(bucket).Error
}

func (r *rateLimitBucketRepo) GetFreshest(ctx context.Context, actorID, key string) (*model.RateLimitBucket, error) {
	var bucket model.RateLimitBucket
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND bucket_key = ?", actorID, key).
		Order("window_start DESC").
		First(&bucket).Error
	if err != nil {
		return nil, err
	}
	return &bucket, nil
}

func (r *rateLimitBucketRepo) GetBlocked(ctx context.Context, actorID, key string, now time.Time) (*model.RateLimitBucket, error) {
	var bucket model.RateLimitBucket
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND bucket_key = ? AND blocked_until IS NOT NULL AND blocked_until > ?", actorID, key, now).
		Order("blocked_until DESC").
		First(&bucket).Error
	if err != nil {
		return nil, err
	}
	return &bucket, nil
}

func (r *rateLimitBucketRepo) Update(ctx context.Context, bucket *model.RateLimitBucket) error {
	return r.db.WithContext(ctx).Save(bucket).Error
}
