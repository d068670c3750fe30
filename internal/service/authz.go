package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"snaproll/backend/internal/model"
	"snaproll/backend/internal/repository"
)

// ── 跨模块共用的鉴权谓词 ──
// 每个写操作都需要"教师拥有课程班"或"学生在选课窗口内"的判断，
// 统一收敛到这两个函数，避免各操作各自重造身份查询逻辑

var (
	ErrSectionNotFound  = errors.New("课程班不存在")
	ErrNotSectionOwner  = errors.New("无权操作该课程班")
	ErrNotSectionMember = errors.New("不是该课程班成员")
)

// ownsSection 校验课程班存在且归 teacherID 所有，通过则返回课程班
func ownsSection(ctx context.Context, repo *repository.Repository, teacherID, sectionID string) (*model.Section, error) {
	section, err := repo.Section.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	if section.TeacherID != teacherID {
		return nil, ErrNotSectionOwner
	}
	return section, nil
}

// isEnrolled 返回学生在 at 时刻的在册选课记录；不在窗口内时 live=false
func isEnrolled(ctx context.Context, repo *repository.Repository, sectionID, studentID string, at time.Time) (*model.Enrollment, bool, error) {
	enrollment, err := repo.Enrollment.GetBySectionAndStudent(ctx, sectionID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return enrollment, EnrolledAsOf(enrollment, at), nil
}
