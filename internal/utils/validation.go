package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	numericPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)
	idPattern      = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

const (
	// MaxDistance 单次提交允许的最大里程 (km)
	MaxDistance = 10000
	// MaxTravelTime 单次提交允许的最大路程时间 (小时)
	MaxTravelTime = 24
)

// ValidateTaskID 验证任务 ID 格式
func ValidateTaskID(id string) error {
	if id == "" {
		return ErrEmptyID
	}

	// 只允许字母、数字、连字符、下划线
	if !idPattern.MatchString(id) {
		return ErrInvalidIDFormat
	}

	if len(id) > 64 {
		return ErrIDTooLong
	}

	return nil
}

// ValidateDistance 验证里程,返回解析后的数值
func ValidateDistance(value string) (float64, error) {
	return parseBounded(value, MaxDistance, "INVALID_DISTANCE", "distance")
}

// ValidateTravelTime 验证路程时间,允许逗号作为小数点
func ValidateTravelTime(value string) (float64, error) {
	return parseBounded(strings.Replace(value, ",", ".", 1), MaxTravelTime, "INVALID_TRAVEL_TIME", "travel time")
}

// parseBounded 数值必须匹配 ^\d+(\.\d+)?$ 且位于 [0, max]
func parseBounded(value string, max float64, code, name string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if !numericPattern.MatchString(trimmed) {
		return 0, NewValidationError(code, "%s must be a non-negative number, got %q", name, value)
	}

	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(n, 0) {
		return 0, NewValidationError(code, "%s must be a non-negative number, got %q", name, value)
	}

	if n < 0 || n > max {
		return 0, NewValidationError(code, "%s must be between 0 and %s, got %s", name, strconv.FormatFloat(max, 'f', -1, 64), trimmed)
	}

	return n, nil
}

// FormatNumber 以最短形式格式化数值
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// RoundTo 四舍五入到指定小数位
func RoundTo(n float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(n*p) / p
}

// 错误定义
var (
	ErrEmptyID         = &ValidationError{Code: "EMPTY_ID", Message: "id cannot be empty"}
	ErrInvalidIDFormat = &ValidationError{Code: "INVALID_ID_FORMAT", Message: "id contains invalid characters"}
	ErrIDTooLong       = &ValidationError{Code: "ID_TOO_LONG", Message: "id exceeds maximum length"}
)
