package utils

import (
	"errors"
	"fmt"
)

// ValidationError 用户输入错误,消息原样返回给客户端
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError 创建验证错误
func NewValidationError(code, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// UpstreamError 外部系统不可达或拒绝请求
type UpstreamError struct {
	Service    string // task_system, ledger
	Operation  string
	StatusCode int // 0 表示传输层错误
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s failed with status %d: %v", e.Service, e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Service, e.Operation, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NotFoundError 引用的资源不存在
type NotFoundError struct {
	Kind string // task, project, user, column ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ConfigurationError 配置的表格/列/文件夹不存在
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// NewConfigurationError 创建配置错误
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation 判断是否为验证错误
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound 判断是否为资源不存在错误
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsUpstream 判断是否为外部系统错误
func IsUpstream(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}

// IsConfiguration 判断是否为配置错误
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
