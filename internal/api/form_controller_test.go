package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/mautops/ledger-bridge/internal/form"
	"github.com/mautops/ledger-bridge/internal/ledger"
	"github.com/mautops/ledger-bridge/internal/tasksystem"
	"github.com/mautops/ledger-bridge/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func kmFields() []tasksystem.CustomFieldSetting {
	return []tasksystem.CustomFieldSetting{
		{GID: "s1", CustomField: tasksystem.CustomField{GID: "cf-km", Name: "Kilométer", Type: "number"}},
	}
}

// TestFormSubmit_EndToEnd 测试已有 20 km 时提交 50 km 返回累计 70
func TestFormSubmit_EndToEnd(t *testing.T) {
	srv := newTestServer(t)
	srv.sheet.rows = []ledger.Row{{ID: 1, Cells: []ledger.Cell{{ColumnID: 1, Value: "111"}, {ColumnID: 2, Value: 20.0}}}}

	srv.tasks.EXPECT().GetTask(gomock.Any(), "111").Return(&tasksystem.Task{GID: "111", Name: "Szerelés", Projects: []tasksystem.Ref{{GID: "p1"}}}, nil)
	srv.tasks.EXPECT().GetProject(gomock.Any(), "p1").Return(&tasksystem.Project{GID: "p1", Name: "2024-001 - Acme"}, nil)
	srv.tasks.EXPECT().ListCustomFieldSettings(gomock.Any(), "p1").Return(kmFields(), nil)
	srv.tasks.EXPECT().UpdateTaskCustomFields(gomock.Any(), "111", map[string]interface{}{"cf-km": 70.0}).Return(nil)

	w := srv.do(http.MethodPost, "/form/submit", submitBody(t, "111", map[string]interface{}{
		form.FieldDistance: "50",
		form.FieldWorker:   map[string]interface{}{"id": "kiss.anna@example.com", "label": "Kiss Anna"},
	}, "2026-10-19T13:00:00Z"))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		AttachmentResponse form.AttachmentResponse `json:"attachment_response"`
		TotalKilometers    float64                 `json:"totalKilometers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 70.0, resp.TotalKilometers)
	assert.Equal(t, "https://bridge.example.com", resp.AttachmentResponse.ResourceURL)
	assert.Len(t, srv.sheet.rows, 2)
}

// TestFormSubmit_ValidationFailure 测试校验失败返回纯文本 400 且不写入
func TestFormSubmit_ValidationFailure(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"bad distance", submitBody(t, "111", map[string]interface{}{form.FieldDistance: "abc"}, "")},
		{"too far", submitBody(t, "111", map[string]interface{}{form.FieldDistance: "10001"}, "")},
		{"missing data", map[string]string{}},
		{"data not json", map[string]string{"data": "{"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(http.MethodPost, "/form/submit", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
			assert.NotEmpty(t, w.Body.String())
		})
	}
	assert.Empty(t, srv.sheet.rows)
}

// TestFormSubmit_UpstreamFailure 测试外部系统失败返回 5xx 纯文本
func TestFormSubmit_UpstreamFailure(t *testing.T) {
	srv := newTestServer(t)
	srv.tasks.EXPECT().GetTask(gomock.Any(), "111").Return(nil, &utils.UpstreamError{Service: "task_system", Operation: "get task", StatusCode: 500, Err: errors.New("boom")})

	w := srv.do(http.MethodPost, "/form/submit", submitBody(t, "111", map[string]interface{}{form.FieldDistance: "5"}, ""))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "upstream service error", w.Body.String())
}

// TestFormSubmit_Expired 测试过期请求在处理之前被拒绝
func TestFormSubmit_Expired(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodPost, "/form/submit", submitBody(t, "111", map[string]interface{}{form.FieldDistance: "5"}, "2026-10-19T11:00:00Z"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, srv.sheet.rows)

	w = srv.do(http.MethodGet, "/search/typeahead?expires_at=2020-01-01T00:00:00Z", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// TestFormMetadata 测试任务与用户信息预填到表单
func TestFormMetadata(t *testing.T) {
	srv := newTestServer(t)
	srv.tasks.EXPECT().GetTask(gomock.Any(), "222").Return(&tasksystem.Task{GID: "222", Name: "Subtask", Parent: &tasksystem.Ref{GID: "111"}}, nil)
	srv.tasks.EXPECT().GetTask(gomock.Any(), "111").Return(&tasksystem.Task{GID: "111", Name: "Parent", Projects: []tasksystem.Ref{{GID: "p1"}}}, nil)
	srv.tasks.EXPECT().GetProject(gomock.Any(), "p1").Return(&tasksystem.Project{GID: "p1", Name: "2024-001 - Acme - Budapest"}, nil)
	srv.tasks.EXPECT().GetUser(gomock.Any(), "u1").Return(&tasksystem.User{GID: "u1", Email: "kiss.anna@example.com", Name: "Kiss Anna"}, nil)

	w := srv.do(http.MethodGet, "/form/metadata?task=222&user=u1&expires_at=2026-10-19T13:00:00Z", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var doc struct {
		Template string `json:"template"`
		Metadata struct {
			OnSubmitCallback string                   `json:"on_submit_callback"`
			Fields           []map[string]interface{} `json:"fields"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, form.TemplateForm, doc.Template)
	assert.Equal(t, "https://bridge.example.com/form/submit", doc.Metadata.OnSubmitCallback)

	values := map[string]interface{}{}
	for _, f := range doc.Metadata.Fields {
		values[f["id"].(string)] = f["value"]
	}
	assert.Equal(t, "2024-001", values[form.FieldProjectNumber])
	assert.Equal(t, "Acme - Budapest", values[form.FieldProjectName])
	assert.Equal(t, "Subtask", values[form.FieldTaskName])
	assert.Equal(t, "kiss.anna@example.com", values[form.FieldWorker])
}

// TestFormMetadata_Errors 测试任务参数错误与任务不存在
func TestFormMetadata_Errors(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodGet, "/form/metadata?task=../etc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	srv.tasks.EXPECT().GetTask(gomock.Any(), "404").Return(nil, &utils.NotFoundError{Kind: "task", ID: "404"})
	w = srv.do(http.MethodGet, "/form/metadata?task=404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, `task "404" not found`, w.Body.String())
}

// TestFormOnChange 测试 onchange 返回空白表单
func TestFormOnChange(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodPost, "/form/onchange", map[string]string{"changed_field": form.FieldDistance})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), form.TemplateForm)
	assert.Contains(t, w.Body.String(), form.FieldDistance)
}

// TestWidget 测试小组件显示累计里程
func TestWidget(t *testing.T) {
	srv := newTestServer(t)
	srv.sheet.rows = []ledger.Row{
		{Cells: []ledger.Cell{{ColumnID: 1, Value: "111"}, {ColumnID: 2, Value: 10.5}}},
		{Cells: []ledger.Cell{{ColumnID: 1, Value: "111"}, {ColumnID: 2, Value: "4.5"}}},
	}

	w := srv.do(http.MethodGet, "/widget?task=111", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "15 km")
	assert.Contains(t, w.Body.String(), form.TemplateWidget)
}

// TestSearchAndAuth 测试搜索回调与授权页
func TestSearchAndAuth(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodGet, "/search/typeahead?query=bozoki", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var typeahead form.TypeaheadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &typeahead))
	require.Len(t, typeahead.Items, 1)
	assert.Equal(t, "bozoki.robert@promir.hu", typeahead.Items[0].Value)

	w = srv.do(http.MethodPost, "/search/attach", map[string]string{"value": "x"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "resource_url")

	w = srv.do(http.MethodGet, "/auth", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<html")
}

// TestWorksheetSubmit 测试工单提交写入工单表
func TestWorksheetSubmit(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodPost, "/worksheet/submit", submitBody(t, "111", map[string]interface{}{
		form.FieldWorker:      "kiss.anna@example.com",
		form.FieldProjectLead: "Nagy Béla",
		form.FieldDate:        "2026-10-19",
	}, ""))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, srv.sheet.rows, 1)

	w = srv.do(http.MethodPost, "/worksheet/submit", submitBody(t, "111", map[string]interface{}{}, ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "worker is required", w.Body.String())
}
