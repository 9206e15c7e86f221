package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/ledger-bridge/internal/config"
	"github.com/mautops/ledger-bridge/internal/database"
	"github.com/mautops/ledger-bridge/internal/model"
	"github.com/mautops/ledger-bridge/internal/repository"
	"github.com/mautops/ledger-bridge/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "repo.db")})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newSubmission(taskID, status string, distance float64, createdAt time.Time) *model.SubmissionModel {
	return &model.SubmissionModel{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Kind:      model.SubmissionKindMileage,
		Status:    status,
		Distance:  distance,
		Values:    []byte(`{"Distance_SL":"50"}`),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// TestSubmissionRepository_CreateAndFind 测试创建与查找
func TestSubmissionRepository_CreateAndFind(t *testing.T) {
	repo := repository.NewSubmissionRepository(setupTestDB(t))
	ctx := context.Background()

	s := newSubmission("111", model.SubmissionStatusQueued, 50, time.Now())
	require.NoError(t, repo.Create(ctx, s))

	s.Status = model.SubmissionStatusSucceeded
	s.Stage = model.StageTaskUpdated
	s.TotalDistance = 70
	now := time.Now()
	s.FinishedAt = &now
	require.NoError(t, repo.Save(ctx, s))

	found, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusSucceeded, found.Status)
	assert.Equal(t, 70.0, found.TotalDistance)
	assert.JSONEq(t, `{"Distance_SL":"50"}`, string(found.Values))
	assert.True(t, found.IsFinished())
}

// TestSubmissionRepository_NotFound 测试不存在的记录
func TestSubmissionRepository_NotFound(t *testing.T) {
	repo := repository.NewSubmissionRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, utils.IsNotFound(err))
}

// TestSubmissionRepository_Validate 测试保存前校验
func TestSubmissionRepository_Validate(t *testing.T) {
	repo := repository.NewSubmissionRepository(setupTestDB(t))

	err := repo.Create(context.Background(), &model.SubmissionModel{ID: "x", TaskID: "1", Kind: "unknown", Status: model.SubmissionStatusQueued})
	assert.Error(t, err)
}

// TestSubmissionRepository_FindByFilter 测试过滤、排序与分页
func TestSubmissionRepository_FindByFilter(t *testing.T) {
	repo := repository.NewSubmissionRepository(setupTestDB(t))
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, newSubmission("111", model.SubmissionStatusSucceeded, 20, base)))
	require.NoError(t, repo.Create(ctx, newSubmission("111", model.SubmissionStatusFailed, 5, base.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newSubmission("111", model.SubmissionStatusSucceeded, 50, base.Add(2*time.Hour))))
	require.NoError(t, repo.Create(ctx, newSubmission("222", model.SubmissionStatusSucceeded, 7, base.Add(3*time.Hour))))

	taskID := "111"
	list, total, err := repo.FindByFilter(ctx, &repository.SubmissionFilter{TaskID: &taskID, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, 50.0, list[0].Distance) // 默认按创建时间倒序

	status := model.SubmissionStatusSucceeded
	list, total, err = repo.FindByFilter(ctx, &repository.SubmissionFilter{Status: &status, SortBy: "distance", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 3)
	assert.Equal(t, 7.0, list[0].Distance)

	_, _, err = repo.FindByFilter(ctx, &repository.SubmissionFilter{SortBy: "id; DROP TABLE submissions"})
	require.Error(t, err)
	assert.True(t, utils.IsValidation(err))
}

// TestAuditLogRepository 测试审计日志
func TestAuditLogRepository(t *testing.T) {
	repo := repository.NewAuditLogRepository(setupTestDB(t))
	ctx := context.Background()

	log := &model.AuditLogModel{
		ID:           uuid.New().String(),
		UserID:       "u1",
		Action:       "submit_mileage",
		ResourceType: "task",
		ResourceID:   "111",
		Details:      []byte(`{"distance":50}`),
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repo.Save(ctx, log))

	logs, err := repo.FindByResource(ctx, "task", "111")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "submit_mileage", logs[0].Action)

	logs, err = repo.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	assert.Error(t, repo.Save(ctx, &model.AuditLogModel{ID: "x"}))
}
