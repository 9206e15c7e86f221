package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mautops/ledger-bridge/internal/model"
	"github.com/mautops/ledger-bridge/internal/service"
	"github.com/mautops/ledger-bridge/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestQueryService 测试提交日志的列表与详情
func TestQueryService(t *testing.T) {
	_, repo := setupJournal(t)
	ctx := context.Background()
	now := time.Now()

	for i, status := range []string{model.SubmissionStatusSucceeded, model.SubmissionStatusFailed, model.SubmissionStatusSucceeded} {
		finished := now.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.Create(ctx, &model.SubmissionModel{
			ID:         []string{"s1", "s2", "s3"}[i],
			TaskID:     "111",
			Kind:       model.SubmissionKindMileage,
			Status:     status,
			Stage:      model.StageValidated,
			Distance:   float64(10 * (i + 1)),
			Values:     []byte(`{"Distance_SL":10}`),
			CreatedAt:  now.Add(time.Duration(i) * time.Second),
			UpdatedAt:  now,
			FinishedAt: &finished,
		}))
	}

	svc := service.NewQueryService(repo)

	status := model.SubmissionStatusSucceeded
	views, total, err := svc.ListSubmissions(ctx, &service.ListSubmissionsFilter{Status: &status, SortBy: "created_at", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, views, 2)
	assert.Equal(t, "s1", views[0].ID)
	assert.Equal(t, "s3", views[1].ID)

	view, err := svc.GetSubmission(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusFailed, view.Status)
	assert.JSONEq(t, `{"Distance_SL":10}`, string(view.Values))
	assert.NotEmpty(t, view.FinishedAt)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"task_id":"111"`)

	_, err = svc.GetSubmission(ctx, "missing")
	assert.True(t, utils.IsNotFound(err))

	_, _, err = svc.ListSubmissions(ctx, &service.ListSubmissionsFilter{SortBy: "values"})
	assert.True(t, utils.IsValidation(err))
}
