package model

// Section 课程班表 — 对应 sections
type Section struct {
	SectionID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"section_id"`
	TeacherID string `gorm:"type:uuid;not null;index"                       json:"teacher_id"`
	Title     string `gorm:"type:varchar(200);not null"                     json:"title"`
	BaseModel

	// 关联
	Teacher *User `gorm:"foreignKey:TeacherID;references:UserID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (Section) TableName() string { return "sections" }
