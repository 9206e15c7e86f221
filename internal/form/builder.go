package form

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mautops/ledger-bridge/internal/config"
	"github.com/mautops/ledger-bridge/internal/model"
	"github.com/mautops/ledger-bridge/internal/utils"
)

// Builder 生成表单、小组件与搜索响应
// 下拉选项来自配置,可在运行时通过 SetOptions 热更新
type Builder struct {
	mu        sync.RWMutex
	opts      config.FormConfig
	publicURL string
	now       func() time.Time
}

// NewBuilder 创建表单生成器, publicURL 用于拼接回调地址
func NewBuilder(publicURL string, opts config.FormConfig) *Builder {
	return &Builder{
		opts:      opts,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

// SetOptions 替换下拉选项与标题
func (b *Builder) SetOptions(opts config.FormConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opts = opts
}

func (b *Builder) options() config.FormConfig {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.opts
}

func (b *Builder) callback(path string) string {
	return b.publicURL + path
}

// MileageForm 里程表单,预填任务与用户信息; task/user 为空时生成空白表单
func (b *Builder) MileageForm(task *model.ResolvedTaskDetails, user *model.UserDetails) FormResponse {
	opts := b.options()

	var projectNumber, projectName, taskName, email string
	if task != nil {
		projectNumber, projectName, taskName = task.ProjectNumber, task.ProjectName, task.TaskName
	}
	if user != nil {
		email = user.Email
	}

	fields := []Field{
		TextField{Base: Base{Name: "Projektszám", ID: FieldProjectNumber, Placeholder: "[full width]", Width: "full"}, Value: projectNumber},
		TextField{Base: Base{Name: "Projektnév", ID: FieldProjectName, Placeholder: "[full width]", Width: "full"}, Value: projectName},
		TextField{Base: Base{Name: "ASANA TaskName", ID: FieldTaskName, Placeholder: "[full width]", Width: "full"}, Value: taskName},
		DropdownField{Base: Base{Name: "Munkavégző", ID: FieldWorker, IsRequired: true, Width: "half"}, Options: toOptions(opts.Workers), Value: email},
		DropdownField{Base: Base{Name: "Rendszám", ID: FieldPlateNumber, IsRequired: true, Width: "half"}, Options: toOptions(opts.Plates)},
		DateField{Base: Base{Name: "Munkavégzés Dátuma", ID: FieldDate, Placeholder: "Dátum"}, Value: b.today()},
		TextField{Base: Base{Name: "Kilométer", ID: FieldDistance, IsRequired: true, Placeholder: "0", Width: "half"}},
		TextField{Base: Base{Name: "Útidő (óra)", ID: FieldTravelTime, Placeholder: "0", Width: "half"}},
		RadioField{Base: Base{Name: "Szerepkör", ID: FieldRole}, Options: toOptions(opts.Roles)},
	}

	return FormResponse{
		Template: TemplateForm,
		Metadata: FormMetadata{
			Title:            opts.Title,
			OnSubmitCallback: b.callback("/form/submit"),
			OnChangeCallback: b.callback("/form/onchange"),
			Fields:           fields,
		},
	}
}

// WorksheetForm 外部工单表单
func (b *Builder) WorksheetForm(task *model.ResolvedTaskDetails, user *model.UserDetails) FormResponse {
	opts := b.options()

	var projectNumber, email string
	if task != nil {
		projectNumber = task.ProjectNumber
	}
	if user != nil {
		email = user.Email
	}

	fields := []Field{
		TextField{Base: Base{Name: "Projektszám", ID: FieldProjectNumber, Placeholder: "[full width]", Width: "full"}, Value: projectNumber},
		DropdownField{Base: Base{Name: "Munkavégző", ID: FieldWorker, IsRequired: true, Width: "half"}, Options: toOptions(opts.Workers), Value: email},
		DateField{Base: Base{Name: "Munkavégzés Dátuma", ID: FieldDate, Placeholder: "Dátum"}, Value: b.today()},
		DropdownField{Base: Base{Name: "Projektvezető", ID: FieldProjectLead, IsRequired: true, Width: "half"}, Options: toOptions(opts.ProjectLeads)},
		MultiLineTextField{Base: Base{Name: "Projektvezető leírása", ID: FieldDescription, Placeholder: "Leírás", Width: "full"}},
	}

	return FormResponse{
		Template: TemplateForm,
		Metadata: FormMetadata{
			Title:            opts.WorksheetTitle,
			OnSubmitCallback: b.callback("/worksheet/submit"),
			Fields:           fields,
		},
	}
}

// Widget 任务小组件,显示累计里程与记录数
func (b *Builder) Widget(totalDistance float64, rowCount int) WidgetResponse {
	opts := b.options()
	return WidgetResponse{
		Template: TemplateWidget,
		Metadata: WidgetMetadata{
			Title: opts.Title,
			Fields: []WidgetField{
				{Name: "Össz kilométer", Type: "text_with_icon", Text: utils.FormatNumber(utils.RoundTo(totalDistance, 2)) + " km"},
				{Name: "Bejegyzések", Type: "text_with_icon", Text: fmt.Sprintf("%d", rowCount)},
			},
			Footer: WidgetFooter{FooterType: "custom_text", Text: "Frissítve: " + b.now().Format(time.RFC3339)},
		},
	}
}

// Attachment 提交成功后返回的附件
func (b *Builder) Attachment(resourceURL string) AttachmentResponse {
	if resourceURL == "" {
		resourceURL = b.publicURL
	}
	return AttachmentResponse{
		ResourceName: b.options().Title,
		ResourceURL:  resourceURL,
	}
}

// Typeahead 按名称或邮箱过滤工作人员列表,查询为空时返回全部
func (b *Builder) Typeahead(query string) TypeaheadResponse {
	q := strings.ToLower(strings.TrimSpace(query))
	items := make([]TypeaheadItem, 0)
	for _, w := range b.options().Workers {
		if q != "" && !strings.Contains(strings.ToLower(w.Label), q) && !strings.Contains(strings.ToLower(w.ID), q) {
			continue
		}
		items = append(items, TypeaheadItem{Title: w.Label, Subtitle: w.ID, Value: w.ID})
	}
	return TypeaheadResponse{Items: items}
}

func (b *Builder) today() string {
	return b.now().Format("2006-01-02")
}

func toOptions(in []config.Option) []Option {
	out := make([]Option, 0, len(in))
	for _, o := range in {
		out = append(out, Option{ID: o.ID, Label: o.Label})
	}
	return out
}
