package form

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mautops/ledger-bridge/internal/utils"
)

// SubmitRequest 表单提交请求体; data 是 JSON 编码的 Envelope
type SubmitRequest struct {
	Data      string `json:"data"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// Envelope 提交内容
type Envelope struct {
	Values map[string]interface{} `json:"values"`
	Task   string                 `json:"task"`
	User   string                 `json:"user"`
}

// ParseEnvelope 解析并校验提交内容
func ParseEnvelope(data string) (*Envelope, error) {
	if strings.TrimSpace(data) == "" {
		return nil, utils.NewValidationError("MISSING_DATA", "submission data is required")
	}

	var env Envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil, utils.NewValidationError("INVALID_DATA", "submission data is not valid JSON")
	}

	if err := utils.ValidateTaskID(env.Task); err != nil {
		return nil, utils.NewValidationError("INVALID_TASK", "invalid task id: %v", err)
	}
	if env.User != "" {
		if err := utils.ValidateTaskID(env.User); err != nil {
			return nil, utils.NewValidationError("INVALID_USER", "invalid user id: %v", err)
		}
	}
	if env.Values == nil {
		env.Values = map[string]interface{}{}
	}

	return &env, nil
}

// String 返回字段值的字符串形式
// 选项类值 ({"id": ..., "label": ...}) 取其 id
func (e *Envelope) String(key string) string {
	return valueString(e.Values[key])
}

// Has 字段是否有非空值
func (e *Envelope) Has(key string) bool {
	return strings.TrimSpace(e.String(key)) != ""
}

func valueString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]interface{}:
		if id, ok := t["id"]; ok {
			return valueString(id)
		}
		return ""
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
