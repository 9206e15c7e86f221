package model

// ResolvedTaskDetails 任务解析结果,每次请求重新计算,不持久化
type ResolvedTaskDetails struct {
	TaskID        string `json:"task_id"` // 用户打开的任务,不是找到项目的祖先任务
	TaskName      string `json:"task_name"`
	ProjectID     string `json:"project_id"`
	ProjectNumber string `json:"project_number"`
	ProjectName   string `json:"project_name"`
}

// HasProject 是否找到了所属项目
func (d *ResolvedTaskDetails) HasProject() bool {
	return d != nil && d.ProjectID != ""
}

// UserDetails 用户信息
type UserDetails struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
