package container

import (
	"fmt"
	"io"
	"time"

	"github.com/mautops/ledger-bridge/internal/config"
	"github.com/mautops/ledger-bridge/internal/database"
	"github.com/mautops/ledger-bridge/internal/form"
	"github.com/mautops/ledger-bridge/internal/ledger"
	"github.com/mautops/ledger-bridge/internal/queue"
	"github.com/mautops/ledger-bridge/internal/repository"
	"github.com/mautops/ledger-bridge/internal/service"
	"github.com/mautops/ledger-bridge/internal/tasksystem"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理数据库、外部系统客户端、串行队列与各服务
type Container struct {
	cfg    *config.Config
	logger *logrus.Logger
	db     *gorm.DB

	tasks      tasksystem.Client
	sheets     ledger.Client
	serializer *queue.Serializer
	builder    *form.Builder

	resolver    service.TaskResolver
	users       service.UserService
	submissions service.SubmissionService
	worksheets  service.WorksheetService
	query       service.QueryService
}

// Options 容器的可替换依赖,为空时按配置创建
type Options struct {
	DB     *gorm.DB
	Tasks  tasksystem.Client
	Sheets ledger.Client
}

// NewContainer 创建依赖注入容器
func NewContainer(cfg *config.Config, log *logrus.Logger) (*Container, error) {
	return NewContainerWithOptions(cfg, log, Options{})
}

// NewContainerWithOptions 创建依赖注入容器,允许注入数据库与客户端
func NewContainerWithOptions(cfg *config.Config, log *logrus.Logger, opts Options) (*Container, error) {
	// 1. 数据库（带重试机制）
	db := opts.DB
	if db == nil {
		var err error
		db, err = database.ConnectWithRetry(cfg.Database, 3, time.Second)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 2. 外部系统客户端
	tasks := opts.Tasks
	if tasks == nil {
		tasks = tasksystem.NewClient(tasksystem.Options{
			BaseURL:     cfg.TaskSystem.BaseURL,
			AccessToken: cfg.TaskSystem.AccessToken,
			Timeout:     cfg.TaskSystem.Timeout,
		})
	}
	sheets := opts.Sheets
	if sheets == nil {
		sheets = ledger.NewClient(ledger.Options{
			BaseURL:     cfg.Ledger.BaseURL,
			AccessToken: cfg.Ledger.AccessToken,
			Timeout:     cfg.Ledger.Timeout,
		})
	}

	// 3. 串行队列,里程与工单提交共用
	serializer := queue.NewSerializer(queue.Options{
		JobTimeout: cfg.Submission.JobTimeout,
		Logger:     log,
	})

	// 4. 服务
	submissionRepo := repository.NewSubmissionRepository(db)
	audit := service.NewAuditLogService(repository.NewAuditLogRepository(db))
	locator := ledger.NewLocator(sheets, cfg.Ledger.WorkspaceID)
	resolver := service.NewTaskResolver(tasks, log)
	fields := service.NewCustomFieldDirectory(tasks, log)

	submissions := service.NewSubmissionService(service.SubmissionServiceConfig{
		Sheet:         cfg.Ledger.Mileage,
		DistanceField: cfg.TaskSystem.DistanceField,
		TaskLinkURL:   cfg.TaskSystem.TaskLinkURL,
		Submission:    cfg.Submission,
	}, serializer, sheets, locator, tasks, resolver, fields, submissionRepo, audit, log)

	worksheets := service.NewWorksheetService(service.WorksheetServiceConfig{
		Sheet:       cfg.Ledger.Worksheet,
		FollowUp:    cfg.Worksheet,
		TaskLinkURL: cfg.TaskSystem.TaskLinkURL,
	}, serializer, sheets, locator, tasks, fields, submissionRepo, audit, log)

	return &Container{
		cfg:         cfg,
		logger:      log,
		db:          db,
		tasks:       tasks,
		sheets:      sheets,
		serializer:  serializer,
		builder:     form.NewBuilder(cfg.Server.PublicURL, cfg.Form),
		resolver:    resolver,
		users:       service.NewUserService(tasks),
		submissions: submissions,
		worksheets:  worksheets,
		query:       service.NewQueryService(submissionRepo),
	}, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB { return c.db }

// Logger 获取日志记录器
func (c *Container) Logger() *logrus.Logger { return c.logger }

// Serializer 获取串行队列
func (c *Container) Serializer() *queue.Serializer { return c.serializer }

// FormBuilder 获取表单生成器
func (c *Container) FormBuilder() *form.Builder { return c.builder }

// TaskResolver 获取任务解析服务
func (c *Container) TaskResolver() service.TaskResolver { return c.resolver }

// UserService 获取用户查询服务
func (c *Container) UserService() service.UserService { return c.users }

// SubmissionService 获取里程提交服务
func (c *Container) SubmissionService() service.SubmissionService { return c.submissions }

// WorksheetService 获取工单提交服务
func (c *Container) WorksheetService() service.WorksheetService { return c.worksheets }

// QueryService 获取提交日志查询服务
func (c *Container) QueryService() service.QueryService { return c.query }

// ApplyConfig 应用热更新的配置,目前只更新表单下拉选项
func (c *Container) ApplyConfig(cfg *config.Config) {
	c.builder.SetOptions(cfg.Form)
	c.logger.WithFields(logrus.Fields{
		"workers": len(cfg.Form.Workers),
		"plates":  len(cfg.Form.Plates),
	}).Info("form options reloaded")
}

// Close 关闭容器: 先停止队列,再释放客户端与数据库连接
func (c *Container) Close() error {
	if c.serializer != nil {
		c.serializer.Close()
	}

	for _, client := range []interface{}{c.tasks, c.sheets} {
		if closer, ok := client.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				c.logger.WithError(err).Warn("failed to close client")
			}
		}
	}

	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}
