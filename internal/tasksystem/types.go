package tasksystem

// Ref 对象引用（只有 gid 与可选名称）
type Ref struct {
	GID  string `json:"gid"`
	Name string `json:"name,omitempty"`
}

// Task 任务记录
type Task struct {
	GID      string `json:"gid"`
	Name     string `json:"name"`
	Projects []Ref  `json:"projects"`
	Parent   *Ref   `json:"parent"`
}

// Project 项目记录
type Project struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// User 用户记录
type User struct {
	GID   string `json:"gid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// EnumOption 枚举型自定义字段的选项
type EnumOption struct {
	GID     string `json:"gid"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// CustomField 自定义字段定义
type CustomField struct {
	GID         string       `json:"gid"`
	Name        string       `json:"name"`
	Type        string       `json:"type"` // text, number, enum, ...
	EnumOptions []EnumOption `json:"enum_options,omitempty"`
}

// CustomFieldSetting 项目上的自定义字段设置
type CustomFieldSetting struct {
	GID         string      `json:"gid"`
	CustomField CustomField `json:"custom_field"`
}

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	Name         string                 `json:"name"`
	Assignee     string                 `json:"assignee,omitempty"`
	DueOn        string                 `json:"due_on,omitempty"`
	Projects     []string               `json:"projects"`
	Notes        string                 `json:"notes,omitempty"`
	CustomFields map[string]interface{} `json:"custom_fields,omitempty"`
}

// envelope 任务系统 API 的 {"data": ...} 包装
type envelope[T any] struct {
	Data T `json:"data"`
}

// apiErrorBody 任务系统 API 的错误响应
type apiErrorBody struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (b *apiErrorBody) message() string {
	if b == nil || len(b.Errors) == 0 {
		return ""
	}
	return b.Errors[0].Message
}
