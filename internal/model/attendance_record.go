package model

// AttendanceRecord 直接观测的考勤记录表 — 对应 attendance_records
// 每个 (课程日, 学生) 最多一条：签到成功写 PRESENT，日终结算写 ABSENT；
// 其余取值只会经由导入/历史路径出现，解析时视同"无直接记录"
type AttendanceRecord struct {
	RecordID   string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"     json:"record_id"`
	ClassDayID string           `gorm:"type:uuid;not null;uniqueIndex:uniq_record_cell"    json:"class_day_id"`
	StudentID  string           `gorm:"type:uuid;not null;uniqueIndex:uniq_record_cell;index" json:"student_id"`
	Status     AttendanceStatus `gorm:"type:varchar(20);not null"                          json:"status"`
	BaseModel

	// 关联
	ClassDay *ClassDay `gorm:"foreignKey:ClassDayID;references:ClassDayID" json:"class_day,omitempty"`
	Student  *User     `gorm:"foreignKey:StudentID;references:UserID"      json:"student,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }
