package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/ledger-bridge/internal/logger"
	"github.com/mautops/ledger-bridge/internal/model"
	"github.com/mautops/ledger-bridge/internal/repository"
	"github.com/mautops/ledger-bridge/internal/utils"
	"github.com/sirupsen/logrus"
)

// journal 记录提交处理过程; 写日志失败只告警,不影响提交本身
type journal struct {
	repo   repository.SubmissionRepository
	logger *logrus.Logger
}

func (j *journal) open(ctx context.Context, kind, taskID, userID string, distance float64, values map[string]interface{}) *model.SubmissionModel {
	now := time.Now()
	raw, _ := json.Marshal(values)
	m := &model.SubmissionModel{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		UserID:    userID,
		Kind:      kind,
		Status:    model.SubmissionStatusQueued,
		Stage:     model.StageValidated,
		Distance:  distance,
		Values:    raw,
		RequestID: utils.RequestInfoFrom(ctx).RequestID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if j.repo != nil {
		if err := j.repo.Create(context.WithoutCancel(ctx), m); err != nil {
			j.warn(ctx, m, err)
		}
	}
	return m
}

func (j *journal) running(ctx context.Context, m *model.SubmissionModel) {
	m.Status = model.SubmissionStatusRunning
	j.save(ctx, m)
}

func (j *journal) reached(ctx context.Context, m *model.SubmissionModel, stage string) {
	m.Stage = stage
	j.save(ctx, m)
}

func (j *journal) succeed(ctx context.Context, m *model.SubmissionModel, total float64, rows int) {
	now := time.Now()
	m.Status = model.SubmissionStatusSucceeded
	m.TotalDistance = total
	m.RowCount = rows
	m.FinishedAt = &now
	j.save(ctx, m)
}

func (j *journal) fail(ctx context.Context, m *model.SubmissionModel, cause error) {
	now := time.Now()
	m.Status = model.SubmissionStatusFailed
	m.Error = cause.Error()
	m.FinishedAt = &now
	j.save(ctx, m)
}

func (j *journal) save(ctx context.Context, m *model.SubmissionModel) {
	m.UpdatedAt = time.Now()
	if j.repo == nil {
		return
	}
	// 任务超时后仍需记录失败
	if err := j.repo.Save(context.WithoutCancel(ctx), m); err != nil {
		j.warn(ctx, m, err)
	}
}

func (j *journal) warn(ctx context.Context, m *model.SubmissionModel, err error) {
	logger.FromContext(ctx, j.logger).WithError(err).
		WithField("submission_id", m.ID).
		Warn("failed to write submission journal")
}
