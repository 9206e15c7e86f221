package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/mautops/ledger-bridge/internal/form"
	"github.com/mautops/ledger-bridge/internal/model"
	"github.com/mautops/ledger-bridge/internal/service"
	"github.com/mautops/ledger-bridge/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// FormController 表单回调控制器
type FormController struct {
	builder     *form.Builder
	resolver    service.TaskResolver
	users       service.UserService
	submissions service.SubmissionService
	worksheets  service.WorksheetService
	logger      *logrus.Logger
}

// NewFormController 创建表单回调控制器
func NewFormController(
	builder *form.Builder,
	resolver service.TaskResolver,
	users service.UserService,
	submissions service.SubmissionService,
	worksheets service.WorksheetService,
	log *logrus.Logger,
) *FormController {
	return &FormController{
		builder:     builder,
		resolver:    resolver,
		users:       users,
		submissions: submissions,
		worksheets:  worksheets,
		logger:      log,
	}
}

// Metadata 里程表单,预填任务所属项目与当前用户
func (c *FormController) Metadata(ctx *gin.Context) {
	task, user, err := c.resolve(ctx.Request.Context(), ctx.Query("task"), ctx.Query("user"))
	if err != nil {
		respondPlainError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, c.builder.MileageForm(task, user))
}

// WorksheetMetadata 外部工单表单
func (c *FormController) WorksheetMetadata(ctx *gin.Context) {
	task, user, err := c.resolve(ctx.Request.Context(), ctx.Query("task"), ctx.Query("user"))
	if err != nil {
		respondPlainError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, c.builder.WorksheetForm(task, user))
}

// resolve 并发获取任务详情与用户详情; 用户为空时不查询
func (c *FormController) resolve(ctx context.Context, taskID, userID string) (*model.ResolvedTaskDetails, *model.UserDetails, error) {
	if err := utils.ValidateTaskID(taskID); err != nil {
		return nil, nil, utils.NewValidationError("INVALID_TASK", "invalid task id: %v", err)
	}
	if userID != "" {
		if err := utils.ValidateTaskID(userID); err != nil {
			return nil, nil, utils.NewValidationError("INVALID_USER", "invalid user id: %v", err)
		}
	}

	var (
		task *model.ResolvedTaskDetails
		user *model.UserDetails
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		task, err = c.resolver.ResolveTask(gctx, taskID)
		return err
	})
	if userID != "" {
		g.Go(func() error {
			var err error
			user, err = c.users.ResolveUser(gctx, userID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return task, user, nil
}

// OnChange 表单字段变化时返回同一份空白表单
func (c *FormController) OnChange(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.builder.MileageForm(nil, nil))
}

// Submit 里程提交,成功时返回附件与任务的累计里程
func (c *FormController) Submit(ctx *gin.Context) {
	env, err := bindEnvelope(ctx)
	if err != nil {
		respondPlainError(ctx, c.logger, err)
		return
	}

	result, err := c.submissions.Submit(ctx.Request.Context(), env)
	if err != nil {
		respondPlainError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, SubmitResponse{
		AttachmentResponse: c.builder.Attachment(""),
		TotalKilometers:    result.TotalKilometers,
	})
}

// WorksheetSubmit 外部工单提交
func (c *FormController) WorksheetSubmit(ctx *gin.Context) {
	env, err := bindEnvelope(ctx)
	if err != nil {
		respondPlainError(ctx, c.logger, err)
		return
	}

	if _, err := c.worksheets.Submit(ctx.Request.Context(), env); err != nil {
		respondPlainError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, c.builder.Attachment(""))
}

// Widget 任务小组件,显示当前累计里程
func (c *FormController) Widget(ctx *gin.Context) {
	agg, err := c.submissions.TaskTotals(ctx.Request.Context(), ctx.Query("task"))
	if err != nil {
		respondPlainError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, c.builder.Widget(agg.TotalDistance, agg.ContributingRowCount))
}

// bindEnvelope 读取 {data, expires_at} 请求体并解析 data
func bindEnvelope(ctx *gin.Context) (*form.Envelope, error) {
	var req form.SubmitRequest
	if err := ctx.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		return nil, utils.NewValidationError("INVALID_BODY", "request body must be JSON with a data field")
	}
	return form.ParseEnvelope(req.Data)
}
