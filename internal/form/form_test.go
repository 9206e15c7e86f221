package form

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mautops/ledger-bridge/internal/config"
	"github.com/mautops/ledger-bridge/internal/model"
	"github.com/mautops/ledger-bridge/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder() *Builder {
	b := NewBuilder("https://bridge.example.com/", config.FormConfig{
		Title:          "Kilométer költség",
		WorksheetTitle: "Külsős munkalap",
		Workers:        []config.Option{{ID: "kiss.anna@example.com", Label: "Kiss Anna"}, {ID: "nagy.bela@example.com", Label: "Nagy Béla"}},
		Plates:         []config.Option{{ID: "ABC-123", Label: "ABC-123"}},
		Roles:          []config.Option{{ID: "PM", Label: "PM"}},
		ProjectLeads:   []config.Option{{ID: "Kiss Anna", Label: "Kiss Anna"}},
	})
	b.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }
	return b
}

// TestField_MarshalJSON 测试字段序列化带 type 标签
func TestField_MarshalJSON(t *testing.T) {
	tests := []struct {
		field Field
		want  string
	}{
		{TextField{Base: Base{ID: "a"}}, "single_line_text"},
		{MultiLineTextField{Base: Base{ID: "b"}}, "multi_line_text"},
		{DropdownField{Base: Base{ID: "c"}}, "dropdown"},
		{DateField{Base: Base{ID: "d"}}, "date"},
		{RadioField{Base: Base{ID: "e"}}, "radio_button"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			raw, err := json.Marshal(tt.field)
			require.NoError(t, err)

			var obj map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &obj))
			assert.Equal(t, tt.want, obj["type"])
			assert.Equal(t, tt.field.FieldID(), obj["id"])
			assert.Contains(t, obj, "is_required")
		})
	}
}

// TestBuilder_MileageForm 测试里程表单预填值
func TestBuilder_MileageForm(t *testing.T) {
	b := newTestBuilder()
	resp := b.MileageForm(
		&model.ResolvedTaskDetails{TaskID: "111", TaskName: "Szerelés", ProjectID: "p1", ProjectNumber: "2024-001", ProjectName: "Acme"},
		&model.UserDetails{Email: "kiss.anna@example.com", Name: "Kiss Anna"},
	)

	assert.Equal(t, TemplateForm, resp.Template)
	assert.Equal(t, "https://bridge.example.com/form/submit", resp.Metadata.OnSubmitCallback)
	assert.Equal(t, "https://bridge.example.com/form/onchange", resp.Metadata.OnChangeCallback)

	f, ok := resp.Metadata.Field(FieldProjectNumber)
	require.True(t, ok)
	assert.Equal(t, "2024-001", f.(TextField).Value)

	f, ok = resp.Metadata.Field(FieldWorker)
	require.True(t, ok)
	worker := f.(DropdownField)
	assert.Equal(t, "kiss.anna@example.com", worker.Value)
	assert.Len(t, worker.Options, 2)

	f, ok = resp.Metadata.Field(FieldDate)
	require.True(t, ok)
	assert.Equal(t, "2024-03-05", f.(DateField).Value)
}

// TestBuilder_MileageForm_Blank 测试无任务信息时生成空白表单
func TestBuilder_MileageForm_Blank(t *testing.T) {
	resp := newTestBuilder().MileageForm(nil, nil)

	f, ok := resp.Metadata.Field(FieldProjectName)
	require.True(t, ok)
	assert.Empty(t, f.(TextField).Value)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"template":"form_metadata_v0"`)
}

// TestBuilder_SetOptions 测试热更新下拉选项
func TestBuilder_SetOptions(t *testing.T) {
	b := newTestBuilder()
	b.SetOptions(config.FormConfig{Title: "Új cím", Plates: []config.Option{{ID: "XYZ-999", Label: "XYZ-999"}}})

	resp := b.MileageForm(nil, nil)
	assert.Equal(t, "Új cím", resp.Metadata.Title)
	f, _ := resp.Metadata.Field(FieldPlateNumber)
	assert.Equal(t, []Option{{ID: "XYZ-999", Label: "XYZ-999"}}, f.(DropdownField).Options)
}

// TestBuilder_WorksheetForm 测试工单表单
func TestBuilder_WorksheetForm(t *testing.T) {
	resp := newTestBuilder().WorksheetForm(&model.ResolvedTaskDetails{ProjectNumber: "2024-001"}, nil)

	assert.Equal(t, "Külsős munkalap", resp.Metadata.Title)
	assert.Equal(t, "https://bridge.example.com/worksheet/submit", resp.Metadata.OnSubmitCallback)
	_, ok := resp.Metadata.Field(FieldDescription)
	assert.True(t, ok)
}

// TestBuilder_Widget 测试小组件
func TestBuilder_Widget(t *testing.T) {
	resp := newTestBuilder().Widget(70.456, 3)

	assert.Equal(t, TemplateWidget, resp.Template)
	require.Len(t, resp.Metadata.Fields, 2)
	assert.Equal(t, "70.46 km", resp.Metadata.Fields[0].Text)
	assert.Equal(t, "3", resp.Metadata.Fields[1].Text)
}

// TestBuilder_Typeahead 测试搜索过滤
func TestBuilder_Typeahead(t *testing.T) {
	b := newTestBuilder()

	assert.Len(t, b.Typeahead("").Items, 2)

	resp := b.Typeahead("béla")
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "nagy.bela@example.com", resp.Items[0].Value)
}

// TestParseEnvelope 测试提交内容解析
func TestParseEnvelope(t *testing.T) {
	env, err := ParseEnvelope(`{"values":{"Distance_SL":"50","Worker_dropdown":{"id":"kiss.anna@example.com","label":"Kiss Anna"},"n":12.5},"task":"111","user":"u1"}`)
	require.NoError(t, err)

	assert.Equal(t, "111", env.Task)
	assert.Equal(t, "50", env.String(FieldDistance))
	assert.Equal(t, "kiss.anna@example.com", env.String(FieldWorker))
	assert.Equal(t, "12.5", env.String("n"))
	assert.False(t, env.Has(FieldTravelTime))
}

// TestParseEnvelope_Invalid 测试非法提交内容
func TestParseEnvelope_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not json", "{values"},
		{"missing task", `{"values":{}}`},
		{"bad task id", `{"values":{},"task":"../etc"}`},
		{"bad user id", `{"values":{},"task":"111","user":"a b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEnvelope(tt.data)
			require.Error(t, err)
			assert.True(t, utils.IsValidation(err))
		})
	}
}
