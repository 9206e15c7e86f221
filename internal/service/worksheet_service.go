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

// WorksheetService 外部工单提交服务
type WorksheetService interface {
	Submit(ctx context.Context, env *form.Envelope) (*WorksheetResult, error)
}

// WorksheetResult 工单提交结果
type WorksheetResult struct {
	SubmissionID   string `json:"submission_id"`
	TaskID         string `json:"task_id"`
	FollowUpTaskID string `json:"follow_up_task_id,omitempty"`
}

// WorksheetServiceConfig 工单服务依赖的配置
type WorksheetServiceConfig struct {
	Sheet       config.SheetConfig
	FollowUp    config.WorksheetConfig
	TaskLinkURL string
}

type worksheetService struct {
	cfg        WorksheetServiceConfig
	serializer *queue.Serializer
	locator    *ledger.Locator
	sheets     ledger.Client
	tasks      tasksystem.Client
	fields     CustomFieldDirectory
	audit      AuditLogService
	journal    *journal
	logger     *logrus.Logger
}

// NewWorksheetService 创建外部工单提交服务,与里程提交共用同一个串行队列
func NewWorksheetService(
	cfg WorksheetServiceConfig,
	serializer *queue.Serializer,
	sheets ledger.Client,
	locator *ledger.Locator,
	tasks tasksystem.Client,
	fields CustomFieldDirectory,
	repo repository.SubmissionRepository,
	audit AuditLogService,
	log *logrus.Logger,
) WorksheetService {
	return &worksheetService{
		cfg:        cfg,
		serializer: serializer,
		locator:    locator,
		sheets:     sheets,
		tasks:      tasks,
		fields:     fields,
		audit:      audit,
		journal:    &journal{repo: repo, logger: log},
		logger:     log,
	}
}

func validateWorksheet(env *form.Envelope) error {
	if err := utils.ValidateTaskID(env.Task); err != nil {
		return err
	}
	if !env.Has(form.FieldWorker) {
		return utils.NewValidationError("MISSING_WORKER", "worker is required")
	}
	if !env.Has(form.FieldProjectLead) {
		return utils.NewValidationError("MISSING_PROJECT_LEAD", "project lead is required")
	}
	if date := strings.TrimSpace(env.String(form.FieldDate)); date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return utils.NewValidationError("INVALID_DATE", "date must be in YYYY-MM-DD format, got %q", date)
		}
	}
	return nil
}

// Submit 校验后入队: 追加工单行,按配置创建后续任务
func (s *worksheetService) Submit(ctx context.Context, env *form.Envelope) (*WorksheetResult, error) {
	if err := validateWorksheet(env); err != nil {
		metrics.RecordSubmission(model.SubmissionKindWorksheet, "rejected")
		return nil, err
	}

	values := make(map[string]interface{}, len(env.Values)+3)
	for k := range env.Values {
		values[k] = env.String(k)
	}
	values[form.FieldTaskID] = env.Task
	if env.User != "" {
		values[form.FieldUserID] = env.User
	}
	if link := taskLink(s.cfg.TaskLinkURL, env.Task); link != "" {
		values[form.FieldTaskLink] = link
	}

	entry := s.journal.open(ctx, model.SubmissionKindWorksheet, env.Task, env.User, 0, values)

	result, err := queue.Enqueue(ctx, s.serializer, func(jobCtx context.Context) (*WorksheetResult, error) {
		return s.run(jobCtx, env, values, entry)
	})
	if err != nil {
		metrics.RecordSubmission(model.SubmissionKindWorksheet, "failed")
		return nil, err
	}

	metrics.RecordSubmission(model.SubmissionKindWorksheet, "succeeded")
	return result, nil
}

func (s *worksheetService) run(ctx context.Context, env *form.Envelope, values map[string]interface{}, entry *model.SubmissionModel) (result *WorksheetResult, err error) {
	log := logger.FromContext(ctx, s.logger).WithFields(logrus.Fields{
		"task_id":       env.Task,
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
	row, err := buildRow(sheet, s.cfg.Sheet.Columns, values, log)
	if err != nil {
		return nil, err
	}
	if _, err := s.sheets.AddRows(ctx, sheet.ID, []ledger.NewRow{row}); err != nil {
		return nil, fmt.Errorf("failed to append worksheet row: %w", err)
	}
	s.journal.reached(ctx, entry, model.StageLedgerWritten)
	log.Info("worksheet row appended")

	result = &WorksheetResult{SubmissionID: entry.ID, TaskID: env.Task}

	if projectID := s.cfg.FollowUp.FollowUpProjectID; projectID != "" {
		gid, err := s.createFollowUp(ctx, projectID, env)
		if err != nil {
			return nil, err
		}
		result.FollowUpTaskID = gid
		s.journal.reached(ctx, entry, model.StageTaskUpdated)
		log.WithField("follow_up_task_id", gid).Info("follow-up task created")
	}

	s.journal.succeed(ctx, entry, 0, 1)
	if s.audit != nil {
		if err := s.audit.RecordAction(ctx, env.User, ActionSubmitWorksheet, "task", env.Task, result); err != nil {
			log.WithError(err).Warn("failed to record audit log")
		}
	}

	return result, nil
}

// createFollowUp 在后续项目中创建任务,自定义字段按名称映射
func (s *worksheetService) createFollowUp(ctx context.Context, projectID string, env *form.Envelope) (string, error) {
	byName := make(map[string]string, len(s.cfg.FollowUp.CustomFields))
	for _, m := range s.cfg.FollowUp.CustomFields {
		if v := strings.TrimSpace(env.String(m.Field)); v != "" {
			byName[m.Column] = v
		}
	}

	customFields, err := s.fields.BuildPayload(ctx, projectID, byName)
	if err != nil {
		return "", err
	}

	assignee := s.cfg.FollowUp.FollowUpAssignee
	if assignee == "" {
		assignee = env.String(form.FieldWorker)
	}

	name := "Külsős munkalap"
	if pn := strings.TrimSpace(env.String(form.FieldProjectNumber)); pn != "" {
		name = pn + projectNameSeparator + name
	}

	req := &tasksystem.CreateTaskRequest{
		Name:         name,
		Assignee:     assignee,
		DueOn:        strings.TrimSpace(env.String(form.FieldDate)),
		Projects:     []string{projectID},
		Notes:        env.String(form.FieldDescription),
		CustomFields: customFields,
	}
	gid, err := s.tasks.CreateTask(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create follow-up task: %w", err)
	}

	if s.audit != nil {
		if err := s.audit.RecordAction(ctx, env.User, ActionCreateFollowUp, "task", gid, map[string]string{"source_task_id": env.Task}); err != nil {
			logger.FromContext(ctx, s.logger).WithError(err).Warn("failed to record audit log")
		}
	}
	return gid, nil
}
