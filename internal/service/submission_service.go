package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mautops/ledger-bridge/internal/config"
	"github.com/mautops/ledger-bridge/internal/form"
	"github.com/mautops/ledger-bridge/internal/ledger"
	"github.com/mautops/ledger-bridge/internal/logger"
	"github.com/mautops/ledger-bridge/internal/metrics"
	"github.com/mautops/ledger-bridge/internal/model"
	"github.com/mautops/ledger-bridge/internal/queue"
	"github.com/mautops/ledger-bridge/internal/repository"
	"github.com/mautops/ledger-bridge/internal/tasksystem"
	"github.com/mautops/ledger-bridge/internal/utils"
	"github.com/sirupsen/logrus"
)

// SubmissionService 里程提交服务
type SubmissionService interface {
	// Validate 校验提交内容,返回待执行的任务; 不产生任何外部写入
	Validate(env *form.Envelope) (*SubmissionJob, error)
	// Submit 校验并通过串行队列执行提交
	Submit(ctx context.Context, env *form.Envelope) (*SubmissionResult, error)
	// TaskTotals 读取任务当前的累计里程（只读,不经过队列）
	TaskTotals(ctx context.Context, taskID string) (ledger.AggregateResult, error)
}

// SubmissionJob 已校验的提交,只被队列消费一次
type SubmissionJob struct {
	TaskID     string
	UserID     string
	Distance   float64
	TravelTime float64
	Values     map[string]interface{} // 表单字段 ID -> 写入表格的值
	EnqueuedAt time.Time
}

// SubmissionResult 提交结果
type SubmissionResult struct {
	SubmissionID    string  `json:"submission_id"`
	TaskID          string  `json:"task_id"`
	TotalKilometers float64 `json:"totalKilometers"`
	RowCount        int     `json:"row_count"`
}

// SubmissionServiceConfig 提交服务依赖的配置
type SubmissionServiceConfig struct {
	Sheet         config.SheetConfig
	DistanceField string
	TaskLinkURL   string
	Submission    config.SubmissionConfig
}

type submissionService struct {
	cfg        SubmissionServiceConfig
	serializer *queue.Serializer
	locator    *ledger.Locator
	sheets     ledger.Client
	tasks      tasksystem.Client
	resolver   TaskResolver
	fields     CustomFieldDirectory
	audit      AuditLogService
	journal    *journal
	logger     *logrus.Logger
}

// NewSubmissionService 创建里程提交服务
func NewSubmissionService(
	cfg SubmissionServiceConfig,
	serializer *queue.Serializer,
	sheets ledger.Client,
	locator *ledger.Locator,
	tasks tasksystem.Client,
	resolver TaskResolver,
	fields CustomFieldDirectory,
	repo repository.SubmissionRepository,
	audit AuditLogService,
	log *logrus.Logger,
) SubmissionService {
	return &submissionService{
		cfg:        cfg,
		serializer: serializer,
		locator:    locator,
		sheets:     sheets,
		tasks:      tasks,
		resolver:   resolver,
		fields:     fields,
		audit:      audit,
		journal:    &journal{repo: repo, logger: log},
		logger:     log,
	}
}

// Validate 校验里程与路程时间
// 路程时间非必填且为空或 0 时,按平均车速由里程推算
func (s *submissionService) Validate(env *form.Envelope) (*SubmissionJob, error) {
	if err := utils.ValidateTaskID(env.Task); err != nil {
		return nil, err
	}

	distance, err := utils.ValidateDistance(env.String(form.FieldDistance))
	if err != nil {
		return nil, err
	}

	travelRaw := env.String(form.FieldTravelTime)
	var travel float64
	switch {
	case s.cfg.Submission.RequireTravelTime:
		travel, err = utils.ValidateTravelTime(travelRaw)
		if err != nil {
			return nil, err
		}
	case strings.TrimSpace(travelRaw) != "":
		travel, err = utils.ValidateTravelTime(travelRaw)
		if err != nil {
			return nil, err
		}
	}
	if travel == 0 && !s.cfg.Submission.RequireTravelTime && s.cfg.Submission.AverageSpeedKMH > 0 {
		travel = utils.RoundTo(distance/s.cfg.Submission.AverageSpeedKMH, 2)
	}

	values := make(map[string]interface{}, len(env.Values)+3)
	for k := range env.Values {
		values[k] = env.String(k)
	}
	values[form.FieldDistance] = distance
	values[form.FieldTravelTime] = travel
	values[form.FieldTaskID] = env.Task
	if env.User != "" {
		values[form.FieldUserID] = env.User
	}
	if link := taskLink(s.cfg.TaskLinkURL, env.Task); link != "" {
		values[form.FieldTaskLink] = link
	}

	return &SubmissionJob{
		TaskID:     env.Task,
		UserID:     env.User,
		Distance:   distance,
		TravelTime: travel,
		Values:     values,
	}, nil
}

// Submit 校验后入队,等待 追加行 -> 回读汇总 -> 更新任务字段 完成
func (s *submissionService) Submit(ctx context.Context, env *form.Envelope) (*SubmissionResult, error) {
	job, err := s.Validate(env)
	if err != nil {
		metrics.RecordSubmission(model.SubmissionKindMileage, "rejected")
		return nil, err
	}

	entry := s.journal.open(ctx, model.SubmissionKindMileage, job.TaskID, job.UserID, job.Distance, job.Values)
	job.EnqueuedAt = time.Now()

	result, err := queue.Enqueue(ctx, s.serializer, func(jobCtx context.Context) (*SubmissionResult, error) {
		return s.run(jobCtx, job, entry)
	})
	if err != nil {
		metrics.RecordSubmission(model.SubmissionKindMileage, "failed")
		return nil, err
	}

	metrics.RecordSubmission(model.SubmissionKindMileage, "succeeded")
	return result, nil
}

// run 在队列中执行; 已经完成的外部写入在失败时不回滚,日志记录到达的阶段
func (s *submissionService) run(ctx context.Context, job *SubmissionJob, entry *model.SubmissionModel) (result *SubmissionResult, err error) {
	log := logger.FromContext(ctx, s.logger).WithFields(logrus.Fields{
		"task_id":       job.TaskID,
		"submission_id": entry.ID,
	})
	s.journal.running(ctx, entry)
	defer func() {
		if err != nil {
			s.journal.fail(ctx, entry, err)
		}
	}()

	sheet, err := s.locator.FindSheet(ctx, s.cfg.Sheet.Folder, s.cfg.Sheet.Sheet)
	if err != nil {
		return nil, err
	}

	row, err := buildRow(sheet, s.mileageColumns(), job.Values, log)
	if err != nil {
		return nil, err
	}
	if _, err := s.sheets.AddRows(ctx, sheet.ID, []ledger.NewRow{row}); err != nil {
		return nil, fmt.Errorf("failed to append ledger row: %w", err)
	}
	s.journal.reached(ctx, entry, model.StageLedgerWritten)
	log.WithField("distance", job.Distance).Info("ledger row appended")

	// 重新读取表格,汇总包含刚写入的行
	fresh, err := s.sheets.GetSheet(ctx, sheet.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read ledger sheet: %w", err)
	}
	agg, err := ledger.SumByTaskID(fresh, job.TaskID, s.cfg.Sheet.TaskIDColumn, s.cfg.Sheet.DistanceColumn)
	if err != nil {
		return nil, err
	}
	total := utils.RoundTo(agg.TotalDistance, 2)
	s.journal.reached(ctx, entry, model.StageAggregated)

	details, err := s.resolver.ResolveTask(ctx, job.TaskID)
	if err != nil {
		return nil, err
	}
	if details.HasProject() {
		if _, err := s.fields.UpdateField(ctx, job.TaskID, details.ProjectID, s.cfg.DistanceField, total); err != nil {
			return nil, err
		}
		s.journal.reached(ctx, entry, model.StageTaskUpdated)
	} else {
		log.Warn("task has no project, total distance not written back")
	}

	if s.cfg.Submission.PostStory && s.cfg.Submission.StoryTemplate != "" {
		text := fmt.Sprintf(s.cfg.Submission.StoryTemplate, utils.FormatNumber(job.Distance), utils.FormatNumber(total))
		if err := s.tasks.CreateStory(ctx, job.TaskID, text); err != nil {
			log.WithError(err).Warn("failed to post story on task")
		}
	}

	s.journal.succeed(ctx, entry, total, agg.ContributingRowCount)
	if s.audit != nil {
		details := map[string]interface{}{
			"submission_id":  entry.ID,
			"distance":       job.Distance,
			"travel_time":    job.TravelTime,
			"total_distance": total,
		}
		if err := s.audit.RecordAction(ctx, job.UserID, ActionSubmitMileage, "task", job.TaskID, details); err != nil {
			log.WithError(err).Warn("failed to record audit log")
		}
	}

	log.WithFields(logrus.Fields{
		"total_distance": total,
		"row_count":      agg.ContributingRowCount,
	}).Info("mileage submission completed")

	return &SubmissionResult{
		SubmissionID:    entry.ID,
		TaskID:          job.TaskID,
		TotalKilometers: total,
		RowCount:        agg.ContributingRowCount,
	}, nil
}

// TaskTotals 读取任务的累计里程
func (s *submissionService) TaskTotals(ctx context.Context, taskID string) (ledger.AggregateResult, error) {
	if err := utils.ValidateTaskID(taskID); err != nil {
		return ledger.AggregateResult{}, err
	}
	sheet, err := s.locator.FindSheet(ctx, s.cfg.Sheet.Folder, s.cfg.Sheet.Sheet)
	if err != nil {
		return ledger.AggregateResult{}, err
	}
	return ledger.SumByTaskID(sheet, taskID, s.cfg.Sheet.TaskIDColumn, s.cfg.Sheet.DistanceColumn)
}

// mileageColumns 配置的列映射,并保证任务 ID 列与里程列一定被写入
func (s *submissionService) mileageColumns() []config.ColumnMapping {
	cols := append([]config.ColumnMapping{}, s.cfg.Sheet.Columns...)
	if s.cfg.Sheet.TaskIDColumn != "" {
		cols = append(cols, config.ColumnMapping{Field: form.FieldTaskID, Column: s.cfg.Sheet.TaskIDColumn})
	}
	if s.cfg.Sheet.DistanceColumn != "" {
		cols = append(cols, config.ColumnMapping{Field: form.FieldDistance, Column: s.cfg.Sheet.DistanceColumn})
	}
	return cols
}

func taskLink(pattern, taskID string) string {
	if pattern == "" || !strings.Contains(pattern, "%s") {
		return ""
	}
	return fmt.Sprintf(pattern, taskID)
}
