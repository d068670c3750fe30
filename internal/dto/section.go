package dto

import "time"

// CreateSectionRequest 创建课程班请求
type CreateSectionRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

// SectionResponse 课程班响应
type SectionResponse struct {
	SectionID   string    `json:"section_id"`
	Title       string    `json:"title"`
	TeacherID   string    `json:"teacher_id"`
	TeacherName string    `json:"teacher_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RosterEntry 课程班名册条目
type RosterEntry struct {
	StudentID  string     `json:"student_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	EnrolledAt time.Time  `json:"enrolled_at"`
	RemovedAt  *time.Time `json:"removed_at,omitempty"`
	Live       bool       `json:"live"`
}
