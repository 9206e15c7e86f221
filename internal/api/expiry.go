package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/mautops/ledger-bridge/internal/logger"
	"github.com/sirupsen/logrus"
)

type expiryProbe struct {
	ExpiresAt interface{} `json:"expires_at"`
}

// ExpiryMiddleware 拒绝已过期的回调请求
// expires_at 取自查询参数或 JSON 请求体; 缺失或无法解析时放行
func ExpiryMiddleware(now func() time.Time, fallback *logrus.Logger) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		raw := c.Query("expires_at")
		if raw == "" && c.Request.Method != http.MethodGet && c.ContentType() == binding.MIMEJSON {
			// ShouldBindBodyWith 缓存请求体,处理器可以再次绑定
			var probe expiryProbe
			if err := c.ShouldBindBodyWith(&probe, binding.JSON); err == nil {
				raw = expiryString(probe.ExpiresAt)
			}
		}

		expiresAt, ok := parseExpiry(raw)
		if ok && now().After(expiresAt) {
			logger.FromContext(c.Request.Context(), fallback).
				WithField("expires_at", raw).
				Warn("request expired")
			PlainText(c, http.StatusForbidden, "request expired")
			c.Abort()
			return
		}

		c.Next()
	}
}

func expiryString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	default:
		return ""
	}
}

// parseExpiry 支持 RFC3339 时间与毫秒时间戳
func parseExpiry(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms), true
	}
	return time.Time{}, false
}
