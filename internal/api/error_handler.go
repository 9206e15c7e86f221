package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/ledger-bridge/internal/logger"
	"github.com/mautops/ledger-bridge/internal/queue"
	"github.com/mautops/ledger-bridge/internal/utils"
	"github.com/sirupsen/logrus"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 错误处理中间件
// 处理器通过 c.Error 登记的错误按类型转换为 JSON 错误响应
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			return
		}
		status := StatusFor(err)
		Error(c, status, PublicMessage(err), "")
	}
}

// WrapError 包装错误,Detail 只保留可以公开的部分
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  PublicMessage(err),
	}
}

// StatusFor 错误类型到 HTTP 状态码的映射
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case utils.IsValidation(err):
		return http.StatusBadRequest
	case utils.IsNotFound(err):
		return http.StatusNotFound
	case utils.IsConfiguration(err):
		return http.StatusInternalServerError
	case errors.Is(err, queue.ErrJobTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, queue.ErrClosed):
		return http.StatusServiceUnavailable
	case utils.IsUpstream(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage 返回给客户端的错误消息
// 验证错误与资源不存在原样返回,其余只返回概括性的消息,细节写入日志
func PublicMessage(err error) string {
	var validation *utils.ValidationError
	if errors.As(err, &validation) {
		return validation.Message
	}
	var notFound *utils.NotFoundError
	if errors.As(err, &notFound) {
		return notFound.Error()
	}
	switch {
	case utils.IsConfiguration(err):
		return "ledger configuration error"
	case errors.Is(err, queue.ErrJobTimeout):
		return "submission timed out"
	case errors.Is(err, queue.ErrClosed):
		return "server is shutting down"
	case utils.IsUpstream(err):
		return "upstream service error"
	default:
		return "internal server error"
	}
}

// respondPlainError 以纯文本返回失败原因,服务端错误同时记录日志
func respondPlainError(c *gin.Context, fallback *logrus.Logger, err error) {
	status := StatusFor(err)
	entry := logger.FromContext(c.Request.Context(), fallback).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}
	PlainText(c, status, PublicMessage(err))
}
