package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"snaproll/backend/internal/dto"
	"snaproll/backend/internal/model"
	"snaproll/backend/internal/repository"
)

// SectionService 课程班业务接口（核心的外围协作方，薄 CRUD）
type SectionService interface {
	Create(ctx context.Context, teacherID string, req *dto.CreateSectionRequest) (*dto.SectionResponse, error)
	GetByID(ctx context.Context, callerID, callerRole, sectionID string) (*dto.SectionResponse, error)
	// ListForCaller 教师看自己开的班，学生看自己加入的班
	ListForCaller(ctx context.Context, callerID, callerRole string) ([]dto.SectionResponse, error)
	// Roster 名册：含已退课学生（Live=false），供历史视图对齐
	Roster(ctx context.Context, teacherID, sectionID string) ([]dto.RosterEntry, error)
}

type sectionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSectionService 创建 SectionService 实例
func NewSectionService(repo *repository.Repository, logger *zap.Logger) SectionService {
	return &sectionService{repo: repo, logger: logger}
}

func (s *sectionService) Create(ctx context.Context, teacherID string, req *dto.CreateSectionRequest) (*dto.SectionResponse, error) {
	section := &model.Section{
		TeacherID: teacherID,
		Title:     req.Title,
	}
	if err := s.repo.Section.Create(ctx, section); err != nil {
		s.logger.Error("创建课程班失败", zap.Error(err))
		return nil, err
	}

	return s.toResponse(section), nil
}

func (s *sectionService) GetByID(ctx context.Context, callerID, callerRole, sectionID string) (*dto.SectionResponse, error) {
	section, err := s.repo.Section.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}

	// 成员校验：班主任或在册学生可见
	if section.TeacherID != callerID {
		if callerRole != model.RoleStudent {
			return nil, ErrNotSectionMember
		}
		_, live, err := isEnrolled(ctx, s.repo, sectionID, callerID, time.Now())
		if err != nil {
			return nil, err
		}
		if !live {
			return nil, ErrNotSectionMember
		}
	}

	return s.toResponse(section), nil
}

func (s *sectionService) ListForCaller(ctx context.Context, callerID, callerRole string) ([]dto.SectionResponse, error) {
	var sections []model.Section
	var err error

	if callerRole == model.RoleTeacher {
		sections, err = s.repo.Section.ListByTeacher(ctx, callerID)
		if err != nil {
			return nil, err
		}
	} else {
		enrollments, err := s.repo.Enrollment.ListByStudent(ctx, callerID)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		ids := make([]string, 0, len(enrollments))
		for i := range enrollments {
			if EnrolledAsOf(&enrollments[i], now) {
				ids = append(ids, enrollments[i].SectionID)
			}
		}
		sections, err = s.repo.Section.ListByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	result := make([]dto.SectionResponse, 0, len(sections))
	for i := range sections {
		result = append(result, *s.toResponse(&sections[i]))
	}
	return result, nil
}

func (s *sectionService) Roster(ctx context.Context, teacherID, sectionID string) ([]dto.RosterEntry, error) {
	if _, err := ownsSection(ctx, s.repo, teacherID, sectionID); err != nil {
		return nil, err
	}

	enrollments, err := s.repo.Enrollment.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := make([]dto.RosterEntry, 0, len(enrollments))
	for i := range enrollments {
		e := &enrollments[i]
		entry := dto.RosterEntry{
			StudentID:  e.StudentID,
			EnrolledAt: e.CreatedAt,
			RemovedAt:  e.RemovedAt,
			Live:       EnrolledAsOf(e, now),
		}
		if e.Student != nil {
			entry.Name = e.Student.Name
			entry.Email = e.Student.Email
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *sectionService) toResponse(section *model.Section) *dto.SectionResponse {
	resp := &dto.SectionResponse{
		SectionID: section.SectionID,
		Title:     section.Title,
		TeacherID: section.TeacherID,
		CreatedAt: section.CreatedAt,
	}
	if section.Teacher != nil {
		resp.TeacherName = section.Teacher.Name
	}
	return resp
}
