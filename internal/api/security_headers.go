package api

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware 安全头中间件
// 表单在任务系统页面内以 iframe 展示,因此只允许配置的来源嵌入
func SecurityHeadersMiddleware(frameAncestors []string) gin.HandlerFunc {
	ancestors := "'none'"
	if len(frameAncestors) > 0 {
		ancestors = ""
		for i, origin := range frameAncestors {
			if i > 0 {
				ancestors += " "
			}
			ancestors += origin
		}
	}

	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Content-Security-Policy", "frame-ancestors "+ancestors)
		c.Next()
	}
}
