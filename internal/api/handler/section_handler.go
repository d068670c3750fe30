package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"snaproll/backend/internal/dto"
	"snaproll/backend/internal/service"
	"snaproll/backend/pkg/response"
)

// SectionHandler 课程班模块 HTTP 处理器
type SectionHandler struct {
	sectionSvc    service.SectionService
	enrollmentSvc service.EnrollmentService
}

// NewSectionHandler 创建 SectionHandler
func NewSectionHandler(sectionSvc service.SectionService, enrollmentSvc service.EnrollmentService) *SectionHandler {
	return &SectionHandler{sectionSvc: sectionSvc, enrollmentSvc: enrollmentSvc}
}

// CreateSection 创建课程班
// POST /api/v1/sections
func (h *SectionHandler) CreateSection(c *gin.Context) {
	var req dto.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	section, err := h.sectionSvc.Create(c.Request.Context(), teacherID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.Created(c, section)
}

// ListSections 获取课程班列表（教师看自己开的班，学生看加入的班）
// GET /api/v1/sections
func (h *SectionHandler) ListSections(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	sections, err := h.sectionSvc.ListForCaller(c.Request.Context(), callerID, role)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": sections})
}

// GetSection 获取课程班详情
// GET /api/v1/sections/:id
func (h *SectionHandler) GetSection(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
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

	section, err := h.sectionSvc.GetByID(c.Request.Context(), callerID, role, id)
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, section)
}

// GetRoster 获取课程班名册（含已退课学生）
// GET /api/v1/sections/:id/students
func (h *SectionHandler) GetRoster(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程班ID不能为空")
		return
	}

	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	roster, err := h.sectionSvc.Roster(c.Request.Context(), teacherID, id)
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": roster})
}

// Enroll 学生加入课程班
// POST /api/v1/sections/:id/enroll
func (h *SectionHandler) Enroll(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程班ID不能为空")
		return
	}

	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.enrollmentSvc.Join(c.Request.Context(), studentID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrSectionNotFound):
			response.NotFound(c, 20001, service.ErrSectionNotFound.Error())
		case errors.Is(err, service.ErrAlreadyEnrolled):
			response.Conflict(c, 20003, service.ErrAlreadyEnrolled.Error())
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// Unenroll 学生退出课程班（软退课）
// DELETE /api/v1/sections/:id/enroll
func (h *SectionHandler) Unenroll(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程班ID不能为空")
		return
	}

	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.enrollmentSvc.Leave(c.Request.Context(), studentID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotEnrolled):
			response.NotFound(c, 20004, service.ErrNotEnrolled.Error())
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

func (h *SectionHandler) handleSectionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, 20001, service.ErrSectionNotFound.Error())
	case errors.Is(err, service.ErrNotSectionOwner):
		response.Forbidden(c, 20002, service.ErrNotSectionOwner.Error())
	case errors.Is(err, service.ErrNotSectionMember):
		response.Forbidden(c, 20005, service.ErrNotSectionMember.Error())
	default:
		response.InternalError(c)
	}
}
