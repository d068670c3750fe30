package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"snaproll/backend/internal/service"
	"snaproll/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportHistory 下载考勤历史 xlsx
// GET /api/v1/sections/:id/attendance/export
func (h *ExportHandler) ExportHistory(c *gin.Context) {
	sectionID := c.Param("id")
	if sectionID == "" {
		response.BadRequest(c, 10001, "课程班ID不能为空")
		return
	}

	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportHistory(c.Request.Context(), teacherID, sectionID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportCalendar 订阅课程日历（iCalendar）
// GET /api/v1/sections/:id/calendar.ics
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	sectionID := c.Param("id")
	if sectionID == "" {
		response.BadRequest(c, 10001, "课程班ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), callerID, role, sectionID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, 20001, service.ErrSectionNotFound.Error())
	case errors.Is(err, service.ErrNotSectionOwner):
		response.Forbidden(c, 20002, service.ErrNotSectionOwner.Error())
	case errors.Is(err, service.ErrNotSectionMember):
		response.Forbidden(c, 20005, service.ErrNotSectionMember.Error())
	case errors.Is(err, service.ErrExportNoClassDays):
		response.NotFound(c, 40001, service.ErrExportNoClassDays.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
