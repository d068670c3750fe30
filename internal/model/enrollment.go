package model

import "time"

// Enrollment 选课记录表 — 对应 enrollments
// 只追加不删除：退课写 removed_at，重新加入清空同一行的 removed_at，
// 同一 (section_id, student_id) 不会产生多条历史记录
type Enrollment struct {
	EnrollmentID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"          json:"enrollment_id"`
	SectionID    string     `gorm:"type:uuid;not null;uniqueIndex:uniq_enrollment_cell"     json:"section_id"`
	StudentID    string     `gorm:"type:uuid;not null;uniqueIndex:uniq_enrollment_cell;index" json:"student_id"`
	CreatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"                      json:"created_at"`
	RemovedAt    *time.Time `json:"removed_at,omitempty"`
	UpdatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"                      json:"updated_at"`

	// 关联
	Section *Section `gorm:"foreignKey:SectionID;references:SectionID" json:"section,omitempty"`
	Student *User    `gorm:"foreignKey:StudentID;references:UserID"    json:"student,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }
