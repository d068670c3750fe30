package model

// 用户角色
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// User 用户表 — 对应 users
// 认证由平台身份服务负责，这里只保留展示与归属判断所需的最小字段
type User struct {
	UserID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name   string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email  string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Role   string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
