package metrics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mautops/ledger-bridge/internal/config"
	"github.com/mautops/ledger-bridge/internal/database"
	"github.com/mautops/ledger-bridge/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSubmission(t *testing.T) {
	before := testutil.ToFloat64(submissionsTotal.WithLabelValues(model.SubmissionKindMileage, "succeeded"))
	RecordSubmission(model.SubmissionKindMileage, "succeeded")
	assert.Equal(t, before+1, testutil.ToFloat64(submissionsTotal.WithLabelValues(model.SubmissionKindMileage, "succeeded")))

	SetQueueDepth(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(queueDepth))

	RecordUpstreamError("ledger")
	assert.GreaterOrEqual(t, testutil.ToFloat64(upstreamErrorsTotal.WithLabelValues("ledger")), 1.0)
}

func TestCollector_SubmissionStatus(t *testing.T) {
	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "m.db")})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	now := time.Now()
	for i, status := range []string{model.SubmissionStatusSucceeded, model.SubmissionStatusSucceeded, model.SubmissionStatusFailed} {
		require.NoError(t, db.Create(&model.SubmissionModel{
			ID:        []string{"a", "b", "c"}[i],
			TaskID:    "111",
			Kind:      model.SubmissionKindMileage,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		}).Error)
	}

	c := NewCollector(db, time.Hour)
	require.NoError(t, c.collectSubmissionStatus())
	assert.Equal(t, 2.0, testutil.ToFloat64(submissionsByStatus.WithLabelValues(model.SubmissionStatusSucceeded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(submissionsByStatus.WithLabelValues(model.SubmissionStatusFailed)))

	require.NoError(t, UpdateDatabaseConnections(db))
	assert.Equal(t, 1.0, testutil.ToFloat64(databaseConnectionsMax))

	c.Start()
	c.Stop()
}
