package model

import "time"

// RateLimitBucket 限流桶表 — 对应 rate_limit_buckets
// 桶只在 now - window_start < window 时有效；过期桶不清理，
// 下次使用时直接新建同键的新桶。BlockedUntil 一旦设置，
// 在其过期前无条件否决该键下的所有尝试
type RateLimitBucket struct {
	BucketID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"bucket_id"`
	ActorID      string     `gorm:"type:uuid;not null;index:idx_bucket_actor_key"  json:"actor_id"`
	BucketKey    string     `gorm:"type:varchar(64);not null;index:idx_bucket_actor_key;column:bucket_key" json:"bucket_key"`
	WindowStart  time.Time  `gorm:"not null"                                       json:"window_start"`
	AttemptCount int        `gorm:"not null;default:0;column:attempt_count"        json:"attempt_count"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
	BaseModel
}

// TableName 指定表名
func (RateLimitBucket) TableName() string { return "rate_limit_buckets" }

// FreshAt 判断桶在 now 时刻是否仍在窗口内
func (b *RateLimitBucket) FreshAt(now time.Time, window time.Duration) bool {
	return now.Sub(b.WindowStart) < window
}

// BlockedAt 判断桶在 now 时刻是否处于封禁期
func (b *RateLimitBucket) BlockedAt(now time.Time) bool {
	return b.BlockedUntil != nil && b.BlockedUntil.After(now)
}
