package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/ledger-bridge/internal/api"
	"github.com/mautops/ledger-bridge/internal/config"
	"github.com/mautops/ledger-bridge/internal/database"
	"github.com/mautops/ledger-bridge/internal/form"
	"github.com/mautops/ledger-bridge/internal/ledger"
	lmocks "github.com/mautops/ledger-bridge/internal/ledger/mocks"
	"github.com/mautops/ledger-bridge/internal/logger"
	"github.com/mautops/ledger-bridge/internal/queue"
	"github.com/mautops/ledger-bridge/internal/repository"
	"github.com/mautops/ledger-bridge/internal/service"
	tmocks "github.com/mautops/ledger-bridge/internal/tasksystem/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

// memorySheet 内存中的里程表
type memorySheet struct {
	mu   sync.Mutex
	rows []ledger.Row
}

var sheetColumns = []ledger.Column{
	{ID: 1, Title: "ASANA TaskID"},
	{ID: 2, Title: "Távolság"},
	{ID: 3, Title: "Munkavégző"},
}

func (m *memorySheet) expect(client *lmocks.MockClient) {
	client.EXPECT().ListWorkspaces(gomock.Any()).Return([]ledger.Workspace{{ID: 7, Name: "Main"}}, nil).AnyTimes()
	client.EXPECT().GetWorkspace(gomock.Any(), int64(7)).Return(&ledger.Workspace{ID: 7, Folders: []ledger.Folder{{ID: 71, Name: "ASANA Proba"}}}, nil).AnyTimes()
	client.EXPECT().GetFolder(gomock.Any(), int64(71)).Return(&ledger.Folder{ID: 71, Sheets: []ledger.Sheet{{ID: 700, Name: "Projektköltségek"}}}, nil).AnyTimes()
	client.EXPECT().GetSheet(gomock.Any(), int64(700)).DoAndReturn(func(context.Context, int64) (*ledger.Sheet, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		return &ledger.Sheet{ID: 700, Columns: sheetColumns, Rows: append([]ledger.Row(nil), m.rows...)}, nil
	}).AnyTimes()
	client.EXPECT().AddRows(gomock.Any(), int64(700), gomock.Any()).DoAndReturn(func(_ context.Context, _ int64, rows []ledger.NewRow) ([]ledger.Row, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		for _, r := range rows {
			m.rows = append(m.rows, ledger.Row{ID: int64(len(m.rows) + 1), Cells: r.Cells})
		}
		return nil, nil
	}).AnyTimes()
}

type testServer struct {
	router *gin.Engine
	tasks  *tmocks.MockClient
	sheet  *memorySheet
	db     *gorm.DB
	repo   repository.SubmissionRepository
}

func newTestServer(t *testing.T, mutate ...func(cfg *config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Server.PublicURL = "https://bridge.example.com"
	cfg.RateLimit.Enabled = false
	cfg.Ledger.WorkspaceID = 7
	cfg.Ledger.Mileage = config.SheetConfig{
		Folder:         "ASANA Proba",
		Sheet:          "Projektköltségek",
		TaskIDColumn:   "ASANA TaskID",
		DistanceColumn: "Távolság",
		Columns:        []config.ColumnMapping{{Field: form.FieldWorker, Column: "Munkavégző"}},
	}
	cfg.Ledger.Worksheet = cfg.Ledger.Mileage
	for _, fn := range mutate {
		fn(cfg)
	}

	ctrl := gomock.NewController(t)
	sheets := lmocks.NewMockClient(ctrl)
	tasks := tmocks.NewMockClient(ctrl)
	sheet := &memorySheet{}
	sheet.expect(sheets)

	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "api.db")})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	repo := repository.NewSubmissionRepository(db)
	audit := service.NewAuditLogService(repository.NewAuditLogRepository(db))

	log := logger.Discard()
	serializer := queue.NewSerializer(queue.Options{Logger: log})
	t.Cleanup(serializer.Close)

	locator := ledger.NewLocator(sheets, cfg.Ledger.WorkspaceID)
	resolver := service.NewTaskResolver(tasks, log)
	fields := service.NewCustomFieldDirectory(tasks, log)
	submissions := service.NewSubmissionService(service.SubmissionServiceConfig{
		Sheet:         cfg.Ledger.Mileage,
		DistanceField: cfg.TaskSystem.DistanceField,
		TaskLinkURL:   cfg.TaskSystem.TaskLinkURL,
		Submission:    cfg.Submission,
	}, serializer, sheets, locator, tasks, resolver, fields, repo, audit, log)
	worksheets := service.NewWorksheetService(service.WorksheetServiceConfig{
		Sheet:    cfg.Ledger.Worksheet,
		FollowUp: cfg.Worksheet,
	}, serializer, sheets, locator, tasks, fields, repo, audit, log)

	builder := form.NewBuilder(cfg.Server.PublicURL, cfg.Form)
	router := api.SetupRoutes(api.RouterDeps{
		Config:      cfg,
		Logger:      log,
		DB:          db,
		Queue:       serializer,
		Forms:       api.NewFormController(builder, resolver, service.NewUserService(tasks), submissions, worksheets, log),
		Search:      api.NewSearchController(builder),
		Submissions: api.NewSubmissionController(service.NewQueryService(repo)),
		Now:         func() time.Time { return fixedNow },
	})

	return &testServer{router: router, tasks: tasks, sheet: sheet, db: db, repo: repo}
}

func (s *testServer) do(method, target string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// submitBody 构造 {data, expires_at} 请求体
func submitBody(t *testing.T, task string, values map[string]interface{}, expiresAt string) map[string]string {
	t.Helper()
	data, err := json.Marshal(map[string]interface{}{"values": values, "task": task, "user": "u1"})
	require.NoError(t, err)
	body := map[string]string{"data": string(data)}
	if expiresAt != "" {
		body["expires_at"] = expiresAt
	}
	return body
}
