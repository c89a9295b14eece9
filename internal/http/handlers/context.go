package handlers

import (
	"github.com/mercato-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// getUserID 从上下文取认证用户ID（由 JWT 中间件写入），
// 缺失时直接响应 401 并返回 false
func getUserID(c *gin.Context) (string, bool) {
	value, ok := c.Get("user_id")
	if !ok {
		response.Unauthorized(c, "error.user_id_missing")
		c.Abort()
		return "", false
	}
	userID, ok := value.(string)
	if !ok || userID == "" {
		response.Unauthorized(c, "error.user_id_invalid")
		c.Abort()
		return "", false
	}
	return userID, true
}
