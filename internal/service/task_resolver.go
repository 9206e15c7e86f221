package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mautops/ledger-bridge/internal/logger"
	"github.com/mautops/ledger-bridge/internal/model"
	"github.com/mautops/ledger-bridge/internal/tasksystem"
	"github.com/sirupsen/logrus"
)

// MaxParentHops 查找所属项目时最多读取的任务数（含起始任务）
const MaxParentHops = 5

const projectNameSeparator = " - "

// TaskResolver 任务解析服务
type TaskResolver interface {
	ResolveTask(ctx context.Context, taskID string) (*model.ResolvedTaskDetails, error)
}

type taskResolver struct {
	client tasksystem.Client
	logger *logrus.Logger
}

// NewTaskResolver 创建任务解析服务
func NewTaskResolver(client tasksystem.Client, log *logrus.Logger) TaskResolver {
	return &taskResolver{client: client, logger: log}
}

// ResolveTask 沿父任务链向上查找第一个属于项目的任务,并拆分项目名
// 返回的 TaskID 与 TaskName 始终是用户打开的任务; 找不到项目时项目字段为空,不视为错误
func (r *taskResolver) ResolveTask(ctx context.Context, taskID string) (*model.ResolvedTaskDetails, error) {
	details := &model.ResolvedTaskDetails{TaskID: taskID}
	log := logger.FromContext(ctx, r.logger).WithField("task_id", taskID)

	current := taskID
	var project *tasksystem.Ref
	for attempts := 0; attempts < MaxParentHops; attempts++ {
		task, err := r.client.GetTask(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("failed to get task %s: %w", current, err)
		}
		if attempts == 0 {
			details.TaskName = task.Name
		}

		if len(task.Projects) > 0 {
			project = &task.Projects[0]
			break
		}
		if task.Parent == nil || task.Parent.GID == "" {
			break
		}
		current = task.Parent.GID
	}

	if project == nil {
		log.Debug("no owning project found within parent chain")
		return details, nil
	}

	p, err := r.client.GetProject(ctx, project.GID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", project.GID, err)
	}

	details.ProjectID = project.GID
	details.ProjectNumber, details.ProjectName = SplitProjectName(p.Name)
	log.WithFields(logrus.Fields{
		"project_id":     details.ProjectID,
		"project_number": details.ProjectNumber,
	}).Debug("task resolved")

	return details, nil
}

// SplitProjectName 在第一个 " - " 处拆分为项目编号与项目名
// 没有分隔符时整个名称作为项目编号,项目名为空
func SplitProjectName(raw string) (number, name string) {
	idx := strings.Index(raw, projectNameSeparator)
	if idx < 0 {
		return raw, ""
	}
	return raw[:idx], raw[idx+len(projectNameSeparator):]
}
