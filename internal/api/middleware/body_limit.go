package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"snaproll/backend/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// 签到和改判请求体都很小，maxBytes 给 1MB 已绰绰有余
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.IsAborted() {
			return
		}
		var maxErr *http.MaxBytesError
		for _, ginErr := range c.Errors {
			if errors.As(ginErr.Err, &maxErr) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
				return
			}
		}
	}
}
