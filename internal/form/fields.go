package form

import "encoding/json"

// 表单字段 ID,同时是提交值的键
const (
	FieldProjectNumber = "ProjectNumber_SL"
	FieldProjectName   = "ProjectName_SL"
	FieldTaskName      = "AsanaTaskName_SL"
	FieldWorker        = "Worker_dropdown"
	FieldPlateNumber   = "PlateNumber_dropdown"
	FieldDate          = "date"
	FieldDistance      = "Distance_SL"
	FieldTravelTime    = "Distance_Time_SL"
	FieldRole          = "radio_button"
	FieldProjectLead   = "PV_dropdown"
	FieldDescription   = "PV_Leiras_ML"

	// 派生字段,不出现在表单上
	FieldTaskID   = "AsanaTaskID_SL"
	FieldUserID   = "UserID"
	FieldTaskLink = "AsanaTaskLink"
)

// Field 表单字段,序列化时带上 type 标签
type Field interface {
	FieldID() string
	FieldType() string
}

// Option 下拉/单选选项
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Base 所有字段共有的属性
type Base struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	IsRequired  bool   `json:"is_required"`
	Placeholder string `json:"placeholder,omitempty"`
	Width       string `json:"width,omitempty"` // full, half
}

// FieldID 返回字段 ID
func (b Base) FieldID() string { return b.ID }

// TextField 单行文本
type TextField struct {
	Base
	Value string `json:"value,omitempty"`
}

func (TextField) FieldType() string { return "single_line_text" }

func (f TextField) MarshalJSON() ([]byte, error) {
	type plain TextField
	return marshalTagged(f.FieldType(), plain(f))
}

// MultiLineTextField 多行文本
type MultiLineTextField struct {
	Base
	Value string `json:"value,omitempty"`
}

func (MultiLineTextField) FieldType() string { return "multi_line_text" }

func (f MultiLineTextField) MarshalJSON() ([]byte, error) {
	type plain MultiLineTextField
	return marshalTagged(f.FieldType(), plain(f))
}

// DropdownField 下拉选择
type DropdownField struct {
	Base
	Options []Option `json:"options"`
	Value   string   `json:"value,omitempty"`
}

func (DropdownField) FieldType() string { return "dropdown" }

func (f DropdownField) MarshalJSON() ([]byte, error) {
	type plain DropdownField
	return marshalTagged(f.FieldType(), plain(f))
}

// DateField 日期 (YYYY-MM-DD)
type DateField struct {
	Base
	Value string `json:"value,omitempty"`
}

func (DateField) FieldType() string { return "date" }

func (f DateField) MarshalJSON() ([]byte, error) {
	type plain DateField
	return marshalTagged(f.FieldType(), plain(f))
}

// RadioField 单选按钮组
type RadioField struct {
	Base
	Options []Option `json:"options"`
	Value   string   `json:"value,omitempty"`
}

func (RadioField) FieldType() string { return "radio_button" }

func (f RadioField) MarshalJSON() ([]byte, error) {
	type plain RadioField
	return marshalTagged(f.FieldType(), plain(f))
}

// marshalTagged 在字段 JSON 中加入 "type"
func marshalTagged(fieldType string, v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	typ, _ := json.Marshal(fieldType)
	obj["type"] = typ
	return json.Marshal(obj)
}
