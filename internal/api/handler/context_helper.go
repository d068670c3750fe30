package handler

import (
	"github.com/gin-gonic/gin"

	"snaproll/backend/pkg/response"
)

// mustGetString 从 Gin 上下文取认证中间件注入的字符串值。
// 取不到说明路由漏挂了 JWTAuth，按未认证处理。
// 调用方应在 ok=false 时直接 return
func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetUserID 提取当前登录用户 ID
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, "user_id")
}

// MustGetRole 提取当前登录用户角色
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role")
}
