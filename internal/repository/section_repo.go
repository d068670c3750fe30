package repository

import (
	"context"

	"gorm.io/gorm"

	"snaproll/backend/internal/model"
)

// SectionRepository 课程班数据访问接口
type SectionRepository interface {
	Create(ctx context.Context, section *model.Section) error
	GetByID(ctx context.Context, id string) (*model.Section, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]model.Section, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Section, error)
}

type sectionRepo struct {
	db *gorm.DB
}

// NewSectionRepo 创建 SectionRepository 实例
func NewSectionRepo(db *gorm.DB) SectionRepository {
	return &sectionRepo{db: db}
}

func (r *sectionRepo) Create(ctx context.Context, section *model.Section) error {
	return r.db.WithContext(ctx).Create(section).Error
}

func (r *sectionRepo) GetByID(ctx context.Context, id string) (*model.Section, error) {
	var section model.Section
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("section_id = ?", id).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepo) ListByTeacher(ctx context.Context, teacherID string) ([]model.Section, error) {
	var sections []model.Section
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&sections).Error
	if err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *sectionRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Section, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var sections []model.Section
	err := r.db.WithContext(ctx).
		Where("section_id IN ?", ids).
		Order("created_at DESC").
		Find(&sections).Error
	if err != nil {
		return nil, err
	}
	return sections, nil
}
