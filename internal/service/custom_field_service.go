package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mautops/ledger-bridge/internal/logger"
	"github.com/mautops/ledger-bridge/internal/tasksystem"
	"github.com/sirupsen/logrus"
)

// CustomFieldDirectory 项目自定义字段目录
// 按名称找不到字段只记录警告,不会中断调用方
type CustomFieldDirectory interface {
	ListCustomFields(ctx context.Context, projectID string) ([]tasksystem.CustomField, error)
	FieldID(ctx context.Context, projectID, name string) (string, bool, error)
	EnumOptionID(ctx context.Context, projectID, fieldName, optionName string) (string, bool, error)
	UpdateField(ctx context.Context, taskID, projectID, fieldName string, value interface{}) (bool, error)
	BuildPayload(ctx context.Context, projectID string, valuesByName map[string]string) (map[string]interface{}, error)
}

type customFieldDirectory struct {
	client tasksystem.Client
	logger *logrus.Logger
}

// NewCustomFieldDirectory 创建自定义字段目录
func NewCustomFieldDirectory(client tasksystem.Client, log *logrus.Logger) CustomFieldDirectory {
	return &customFieldDirectory{client: client, logger: log}
}

// ListCustomFields 列出项目的自定义字段
func (d *customFieldDirectory) ListCustomFields(ctx context.Context, projectID string) ([]tasksystem.CustomField, error) {
	settings, err := d.client.ListCustomFieldSettings(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom fields for project %s: %w", projectID, err)
	}

	fields := make([]tasksystem.CustomField, 0, len(settings))
	for _, s := range settings {
		fields = append(fields, s.CustomField)
	}
	return fields, nil
}

// FindFieldID 按名称精确匹配（区分大小写）
func FindFieldID(fields []tasksystem.CustomField, name string) (string, bool) {
	if f := findField(fields, name); f != nil {
		return f.GID, true
	}
	return "", false
}

func findField(fields []tasksystem.CustomField, name string) *tasksystem.CustomField {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}
	return nil
}

// FieldID 查找字段 ID
func (d *customFieldDirectory) FieldID(ctx context.Context, projectID, name string) (string, bool, error) {
	fields, err := d.ListCustomFields(ctx, projectID)
	if err != nil {
		return "", false, err
	}

	id, ok := FindFieldID(fields, name)
	if !ok {
		d.log(ctx).WithFields(logrus.Fields{"project_id": projectID, "field": name}).
			Warn("custom field not found in project")
	}
	return id, ok, nil
}

// EnumOptionID 查找枚举字段中指定名称的选项 ID
func (d *customFieldDirectory) EnumOptionID(ctx context.Context, projectID, fieldName, optionName string) (string, bool, error) {
	fields, err := d.ListCustomFields(ctx, projectID)
	if err != nil {
		return "", false, err
	}

	field := findField(fields, fieldName)
	if field == nil {
		d.log(ctx).WithFields(logrus.Fields{"project_id": projectID, "field": fieldName}).
			Warn("custom field not found in project")
		return "", false, nil
	}

	id, ok := enumOption(field, optionName)
	if !ok {
		d.log(ctx).WithFields(logrus.Fields{"field": fieldName, "option": optionName}).
			Warn("enum option not found")
	}
	return id, ok, nil
}

// UpdateField 按字段名更新任务上的自定义字段
// 字段不存在时返回 false,不报错
func (d *customFieldDirectory) UpdateField(ctx context.Context, taskID, projectID, fieldName string, value interface{}) (bool, error) {
	fields, err := d.ListCustomFields(ctx, projectID)
	if err != nil {
		return false, err
	}

	field := findField(fields, fieldName)
	if field == nil {
		d.log(ctx).WithFields(logrus.Fields{"project_id": projectID, "field": fieldName}).
			Warn("custom field not found in project, skipping update")
		return false, nil
	}

	coerced, ok := coerceFieldValue(field, value)
	if !ok {
		d.log(ctx).WithFields(logrus.Fields{"field": fieldName, "value": value}).
			Warn("value does not fit custom field type, skipping update")
		return false, nil
	}

	if err := d.client.UpdateTaskCustomFields(ctx, taskID, map[string]interface{}{field.GID: coerced}); err != nil {
		return false, fmt.Errorf("failed to update custom field %q on task %s: %w", fieldName, taskID, err)
	}
	return true, nil
}

// BuildPayload 把 字段名 -> 值 转换为 字段 ID -> 按类型转换后的值
// 枚举字段的值按选项名解析为选项 ID; 找不到的字段或选项被跳过
func (d *customFieldDirectory) BuildPayload(ctx context.Context, projectID string, valuesByName map[string]string) (map[string]interface{}, error) {
	fields, err := d.ListCustomFields(ctx, projectID)
	if err != nil {
		return nil, err
	}

	payload := make(map[string]interface{}, len(valuesByName))
	for name, value := range valuesByName {
		field := findField(fields, name)
		if field == nil {
			d.log(ctx).WithFields(logrus.Fields{"project_id": projectID, "field": name}).
				Warn("custom field not found in project")
			continue
		}
		coerced, ok := coerceFieldValue(field, value)
		if !ok {
			d.log(ctx).WithFields(logrus.Fields{"field": name, "value": value}).
				Warn("value does not fit custom field type, skipping")
			continue
		}
		payload[field.GID] = coerced
	}
	return payload, nil
}

func (d *customFieldDirectory) log(ctx context.Context) *logrus.Entry {
	return logger.FromContext(ctx, d.logger)
}

func enumOption(field *tasksystem.CustomField, name string) (string, bool) {
	for _, o := range field.EnumOptions {
		if o.Name == name {
			return o.GID, true
		}
	}
	return "", false
}

// coerceFieldValue 按字段类型转换值: number -> float64, enum -> 选项 ID, 其他 -> 字符串
func coerceFieldValue(field *tasksystem.CustomField, value interface{}) (interface{}, bool) {
	switch field.Type {
	case "number":
		switch v := value.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, false
			}
			return n, true
		default:
			return nil, false
		}
	case "enum":
		return enumOption(field, fmt.Sprint(value))
	default:
		switch v := value.(type) {
		case string:
			return v, true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		default:
			return fmt.Sprint(v), true
		}
	}
}
