package repository

import (
	"context"

	"gorm.io/gorm"

	"snaproll/backend/internal/model"
)

// AttendanceRecordRepository 考勤记录数据访问接口
type AttendanceRecordRepository interface {
	Create(ctx context.Context, record *model.AttendanceRecord) error
	GetByClassDayAndStudent(ctx context.Context, classDayID, studentID string) (*model.AttendanceRecord, error)
	ListByClassDay(ctx context.Context, classDayID string) ([]model.AttendanceRecord, error)
	ListByClassDays(ctx context.Context, classDayIDs []string) ([]model.AttendanceRecord, error)
	Update(ctx context.Context, record *model.AttendanceRecord) error
}

type attendanceRecordRepo struct {
	db *gorm.DB
}

// NewAttendanceRecordRepo 创建 AttendanceRecordRepository 实例
func NewAttendanceRecordRepo(db *gorm.DB) AttendanceRecordRepository {
	return &attendanceRecordRepo{db: db}
}

func (r *attendanceRecordRepo) Create(ctx context.Context, record *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *attendanceRecordRepo) GetByClassDayAndStudent(ctx context.Context, classDayID, studentID string) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("class_day_id = ? AND student_id = ?", classDayID, studentID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRecordRepo) ListByClassDay(ctx context.Context, classDayID string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("class_day_id = ?", classDayID).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListByClassDays 批量取数（历史视图与日终结算按课程日分组消费）
func (r *attendanceRecordRepo) ListByClassDays(ctx context.Context, classDayIDs []string) ([]model.AttendanceRecord, error) {
	if len(classDayIDs) == 0 {
		return nil, nil
	}
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("class_day_id IN ?", classDayIDs).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRecordRepo) Update(ctx context.Context, record *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}
