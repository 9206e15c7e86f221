package form

// 响应模板名
const (
	TemplateForm   = "form_metadata_v0"
	TemplateWidget = "summary_with_details_v0"
)

// FormResponse 表单描述文档
type FormResponse struct {
	Template string       `json:"template"`
	Metadata FormMetadata `json:"metadata"`
}

// FormMetadata 表单内容与回调地址
type FormMetadata struct {
	Title            string  `json:"title"`
	SubmitButtonText string  `json:"submit_button_text,omitempty"`
	OnSubmitCallback string  `json:"on_submit_callback"`
	OnChangeCallback string  `json:"on_change_callback,omitempty"`
	Fields           []Field `json:"fields"`
}

// Field 按 ID 查找字段
func (m FormMetadata) Field(id string) (Field, bool) {
	for _, f := range m.Fields {
		if f.FieldID() == id {
			return f, true
		}
	}
	return nil, false
}

// WidgetResponse 任务侧边栏小组件文档
type WidgetResponse struct {
	Template string         `json:"template"`
	Metadata WidgetMetadata `json:"metadata"`
}

// WidgetMetadata 小组件内容
type WidgetMetadata struct {
	Title  string        `json:"title"`
	Fields []WidgetField `json:"fields"`
	Footer WidgetFooter  `json:"footer"`
}

// WidgetField 小组件字段
type WidgetField struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // text_with_icon, datetime_with_icon
	Text     string `json:"text,omitempty"`
	Datetime string `json:"datetime,omitempty"`
}

// WidgetFooter 小组件页脚
type WidgetFooter struct {
	FooterType string `json:"footer_type"`
	Text       string `json:"text,omitempty"`
}

// AttachmentResponse 提交成功后附加到任务上的资源
type AttachmentResponse struct {
	ResourceName string `json:"resource_name"`
	ResourceURL  string `json:"resource_url"`
}

// TypeaheadResponse 搜索候选列表
type TypeaheadResponse struct {
	Items []TypeaheadItem `json:"items"`
}

// TypeaheadItem 搜索候选项
type TypeaheadItem struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Value    string `json:"value"`
	IconURL  string `json:"icon_url,omitempty"`
}
