package utils

import (
	"errors"
	"regexp"
	"strings"
)

var sortFieldPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateSortField 验证排序字段,只允许白名单中的列,防止 SQL 注入
func ValidateSortField(field string, allowed []string) error {
	if field == "" {
		return errors.New("sort field cannot be empty")
	}

	if !sortFieldPattern.MatchString(field) {
		return errors.New("invalid sort field format")
	}

	for _, a := range allowed {
		if a == field {
			return nil
		}
	}
	return errors.New("sort field is not allowed")
}

// SanitizeSortOrder 清理排序方向
func SanitizeSortOrder(order string) string {
	upperOrder := strings.ToUpper(strings.TrimSpace(order))
	if upperOrder == "ASC" || upperOrder == "DESC" {
		return upperOrder
	}
	return "DESC" // 默认降序
}
