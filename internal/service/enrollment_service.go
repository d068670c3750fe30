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

var (
	// ErrAlreadyEnrolled 已在选课窗口内，重复加入没有意义
	ErrAlreadyEnrolled = errors.New("已加入该课程班")
	// ErrNotEnrolled 不在选课窗口内，无法退课
	ErrNotEnrolled = errors.New("未加入该课程班")
)

// EnrollmentService 选课台账业务接口
// 台账只追加：退课写 removed_at，重新加入清空同一行的 removed_at，
// 同一 (课程班, 学生) 不产生第二条历史记录
type EnrollmentService interface {
	Join(ctx context.Context, studentID, sectionID string) error
	Leave(ctx context.Context, studentID, sectionID string) error
}

type enrollmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, logger: logger}
}

func (s *enrollmentService) Join(ctx context.Context, studentID, sectionID string) error {
	if _, err := s.repo.Section.GetByID(ctx, sectionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSectionNotFound
		}
		return err
	}

	now := time.Now()
	enrollment, err := s.repo.Enrollment.GetBySectionAndStudent(ctx, sectionID, studentID)
	switch {
	case err == nil:
		if EnrolledAsOf(enrollment, now) {
			return ErrAlreadyEnrolled
		}
		// 重新加入：清空 removed_at，不创建新行
		enrollment.RemovedAt = nil
		if err := s.repo.Enrollment.Update(ctx, enrollment); err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		enrollment = &model.Enrollment{
			SectionID: sectionID,
			StudentID: studentID,
		}
		if err := s.repo.Enrollment.Create(ctx, enrollment); err != nil {
			return err
		}
	default:
		return err
	}

	s.logger.Info("学生加入课程班",
		zap.String("student_id", studentID),
		zap.String("section_id", sectionID))
	return nil
}

func (s *enrollmentService) Leave(ctx context.Context, studentID, sectionID string) error {
	now := time.Now()
	enrollment, live, err := isEnrolled(ctx, s.repo, sectionID, studentID, now)
	if err != nil {
		return err
	}
	if enrollment == nil || !live {
		return ErrNotEnrolled
	}

	enrollment.RemovedAt = &now
	if err := s.repo.Enrollment.Update(ctx, enrollment); err != nil {
		return err
	}

	s.logger.Info("学生退出课程班",
		zap.String("student_id", studentID),
		zap.String("section_id", sectionID))
	return nil
}
