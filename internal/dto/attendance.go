package dto

import "time"

// StartAttendanceResponse 开启签到响应
type StartAttendanceResponse struct {
	ClassDayID     string     `json:"class_day_id"`
	Date           time.Time  `json:"date"`
	AttendanceCode string     `json:"attendance_code"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// ManualStatusRequest 教师改判请求
type ManualStatusRequest struct {
	ClassDayID string `json:"class_day_id" binding:"required"`
	StudentID  string `json:"student_id"   binding:"required"`
	Status     string `json:"status"       binding:"required"`
}

// ManualChangeInfo 改判溯源信息（悬浮提示展示用）
type ManualChangeInfo struct {
	Status      string    `json:"status"`
	TeacherName string    `json:"teacher_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// AttendanceCell 单个 (课程日, 学生) 单元格的解析结果
// 该结构必须与状态解析器的输出逐字段一致，是唯一面向客户端的真相
type AttendanceCell struct {
	StudentID      string            `json:"student_id"`
	StudentName    string            `json:"student_name,omitempty"`
	Status         string            `json:"status"`
	OriginalStatus string            `json:"original_status"`
	IsManual       bool              `json:"is_manual"`
	ManualChange   *ManualChangeInfo `json:"manual_change"`
}

// ClassDayHistory 单个课程日的历史视图
type ClassDayHistory struct {
	ClassDayID string           `json:"class_day_id"`
	Date       time.Time        `json:"date"`
	Held       bool             `json:"held"`
	Cells      []AttendanceCell `json:"cells"`
}

// StudentDayHistory 学生视角的单日成绩单条目
type StudentDayHistory struct {
	ClassDayID     string            `json:"class_day_id"`
	SectionID      string            `json:"section_id"`
	Date           time.Time         `json:"date"`
	Status         string            `json:"status"`
	OriginalStatus string            `json:"original_status"`
	IsManual       bool              `json:"is_manual"`
	ManualChange   *ManualChangeInfo `json:"manual_change"`
}

// AbsenceTotal 学生缺勤汇总（只统计活跃课程日）
type AbsenceTotal struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	AbsentCount int    `json:"absent_count"`
	ActiveDays  int    `json:"active_days"`
}
