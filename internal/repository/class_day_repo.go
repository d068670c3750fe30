package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"snaproll/backend/internal/model"
)

// ClassDayRepository 课程日数据访问接口
type ClassDayRepository interface {
	Create(ctx context.Context, day *model.ClassDay) error
	GetByID(ctx context.Context, id string) (*model.ClassDay, error)
	GetBySectionAndDate(ctx context.Context, sectionID string, date time.Time) (*model.ClassDay, error)
	// GetByCode 按签到码精确匹配，多个课程日共用同一码时取最近轮换的一条。
	// 4 位数字码不保证全局唯一，"最近匹配者胜"是沿用的兼容行为
	GetByCode(ctx context.Context, code string) (*model.ClassDay, error)
	Update(ctx context.Context, day *model.ClassDay) error
	// ListBySection 按日期倒序分页；limit <= 0 时返回全部（汇总统计用）
	ListBySection(ctx context.Context, sectionID string, offset, limit int) ([]model.ClassDay, int64, error)
	// ListBefore 返回所有 date 早于 cutoff 的课程日（日终结算扫描用）
	ListBefore(ctx context.Context, cutoff time.Time) ([]model.ClassDay, error)
}

type classDayRepo struct {
	db *gorm.DB
}

// NewClassDayRepo 创建 ClassDayRepository 实例
func NewClassDayRepo(db *gorm.DB) ClassDayRepository {
	return &classDayRepo{db: db}
}

func (r *classDayRepo) Create(ctx context.Context, day *model.ClassDay) error {
	return r.db.WithContext(ctx).Create(day).Error
}

func (r *classDayRepo) GetByID(ctx context.Context, id string) (*model.ClassDay, error) {
	var day model.ClassDay
	err := r.db.WithContext(ctx).
		Where("class_day_id = ?", id).
		First(&day).Error
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *classDayRepo) GetBySectionAndDate(ctx context.Context, sectionID string, date time.Time) (*model.ClassDay, error) {
	var day model.ClassDay
	err := r.db.WithContext(ctx).
		Where("section_id = ? AND date = ?", sectionID, date).
		First(&day).Error
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *classDayRepo) GetByCode(ctx context.Context, code string) (*model.ClassDay, error) {
	var day model.ClassDay
	err := r.db.WithContext(ctx).
		Where("attendance_code = ?", code).
		Order("updated_at DESC").
		First(&day).Error
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *classDayRepo) Update(ctx context.Context, day *model.ClassDay) error {
	return r.db.WithContext(ctx).Save(day).Error
}

func (r *classDayRepo) ListBySection(ctx context.Context, sectionID string, offset, limit int) ([]model.ClassDay, int64, error) {
	var days []model.ClassDay
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ClassDay{}).Where("section_id = ?", sectionID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		db = db.Offset(offset).Limit(limit)
	}
	if err := db.Order("date DESC").Find(&days).Error; err != nil {
		return nil, 0, err
	}

	return days, total, nil
}

func (r *classDayRepo) ListBefore(ctx context.Context, cutoff time.Time) ([]model.ClassDay, error) {
	var days []model.ClassDay
	err := r.db.WithContext(ctx).
		Where("date < ?", cutoff).
		Order("section_id, date ASC").
		Find(&days).Error
	if err != nil {
		return nil, err
	}
	return days, nil
}
