package dto

// CheckinRequest 学生签到请求
// 学生身份取自已认证的 Token，不接受显式 student_id 参数
type CheckinRequest struct {
	AttendanceCode string `json:"attendance_code" binding:"required"`
}

// CheckinResult 签到结果
// 失败也走结构化返回（不抛错）：客户端即使失败也需要剩余尝试次数。
// 错误文案对用户可见且措辞稳定，修改等同于破坏接口
type CheckinResult struct {
	OK           bool   `json:"ok"`
	RecordID     string `json:"record_id,omitempty"`
	Error        string `json:"error,omitempty"`
	AttemptsLeft *int   `json:"attempts_left,omitempty"`
	BlockedUntil *int64 `json:"blocked_until,omitempty"` // Unix 毫秒
}
