package tasksystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mautops/ledger-bridge/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"resty.dev/v3"
)

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

const serviceName = "task_system"

var tracer = otel.Tracer("github.com/mautops/ledger-bridge/internal/tasksystem")

// Client 任务系统 API
type Client interface {
	GetTask(ctx context.Context, taskID string) (*Task, error)
	GetProject(ctx context.Context, projectID string) (*Project, error)
	GetUser(ctx context.Context, userID string) (*User, error)
	ListCustomFieldSettings(ctx context.Context, projectID string) ([]CustomFieldSetting, error)
	UpdateTaskCustomFields(ctx context.Context, taskID string, fields map[string]interface{}) error
	CreateTask(ctx context.Context, req *CreateTaskRequest) (string, error)
	CreateStory(ctx context.Context, taskID, text string) error
}

// Options 客户端配置
type Options struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

type restClient struct {
	http *resty.Client
}

// NewClient 创建基于 REST 的任务系统客户端
func NewClient(opts Options) Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetAuthToken(opts.AccessToken).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	return &restClient{http: c}
}

// Close 释放底层连接
func (c *restClient) Close() error {
	return c.http.Close()
}

// GetTask 获取任务（名称、所属项目、父任务）
func (c *restClient) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var out envelope[Task]
	err := c.do(ctx, "get task", "task", taskID, &out, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("gid", taskID).
			SetQueryParam("opt_fields", "name,projects,parent").
			Get("/tasks/{gid}")
	})
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// GetProject 获取项目
func (c *restClient) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var out envelope[Project]
	err := c.do(ctx, "get project", "project", projectID, &out, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("gid", projectID).
			SetQueryParam("opt_fields", "name").
			Get("/projects/{gid}")
	})
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// GetUser 获取用户邮箱与姓名
func (c *restClient) GetUser(ctx context.Context, userID string) (*User, error) {
	var out envelope[User]
	err := c.do(ctx, "get user", "user", userID, &out, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("gid", userID).
			SetQueryParam("opt_fields", "email,name").
			Get("/users/{gid}")
	})
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ListCustomFieldSettings 获取项目的自定义字段设置
func (c *restClient) ListCustomFieldSettings(ctx context.Context, projectID string) ([]CustomFieldSetting, error) {
	var out envelope[[]CustomFieldSetting]
	err := c.do(ctx, "list custom field settings", "project", projectID, &out, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("gid", projectID).
			SetQueryParams(map[string]string{
				"limit":      "100",
				"opt_fields": "custom_field,custom_field.name,custom_field.type,custom_field.enum_options,custom_field.enum_options.name,custom_field.enum_options.enabled",
			}).
			Get("/projects/{gid}/custom_field_settings")
	})
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

// UpdateTaskCustomFields 更新任务的自定义字段值（键为字段 gid）
func (c *restClient) UpdateTaskCustomFields(ctx context.Context, taskID string, fields map[string]interface{}) error {
	body := envelope[map[string]interface{}]{Data: map[string]interface{}{"custom_fields": fields}}
	return c.do(ctx, "update task", "task", taskID, nil, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("gid", taskID).
			SetBody(body).
			Put("/tasks/{gid}")
	})
}

// CreateTask 创建任务,返回新任务 gid
func (c *restClient) CreateTask(ctx context.Context, req *CreateTaskRequest) (string, error) {
	var out envelope[Task]
	err := c.do(ctx, "create task", "project", strings.Join(req.Projects, ","), &out, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(envelope[*CreateTaskRequest]{Data: req}).
			Post("/tasks")
	})
	if err != nil {
		return "", err
	}
	return out.Data.GID, nil
}

// CreateStory 在任务上发表评论
func (c *restClient) CreateStory(ctx context.Context, taskID, text string) error {
	body := envelope[map[string]string]{Data: map[string]string{"text": text}}
	return c.do(ctx, "create story", "task", taskID, nil, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("gid", taskID).
			SetBody(body).
			Post("/tasks/{gid}/stories")
	})
}

// do 执行请求,解码 {"data": ...} 响应,并把失败统一转换为 UpstreamError / NotFoundError
func (c *restClient) do(ctx context.Context, op, kind, id string, result interface{}, send func(*resty.Request) (*resty.Response, error)) error {
	ctx, span := tracer.Start(ctx, "tasksystem."+strings.ReplaceAll(op, " ", "_"), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("tasksystem.resource_id", id))

	resp, err := send(c.http.R().SetContext(ctx).SetHeader("Content-Type", "application/json"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op)
		return &utils.UpstreamError{Service: serviceName, Operation: op, Err: err}
	}

	if resp.IsError() {
		span.SetStatus(codes.Error, resp.Status())
		if resp.StatusCode() == http.StatusNotFound {
			return &utils.NotFoundError{Kind: kind, ID: id}
		}
		var apiErr apiErrorBody
		_ = json.Unmarshal([]byte(resp.String()), &apiErr)
		msg := apiErr.message()
		if msg == "" {
			msg = resp.Status()
		}
		return &utils.UpstreamError{Service: serviceName, Operation: op, StatusCode: resp.StatusCode(), Err: errors.New(msg)}
	}

	if result != nil {
		if err := json.Unmarshal([]byte(resp.String()), result); err != nil {
			return &utils.UpstreamError{Service: serviceName, Operation: op, StatusCode: resp.StatusCode(), Err: fmt.Errorf("failed to decode response: %w", err)}
		}
	}

	return nil
}

// ensure interface compliance
var _ Client = (*restClient)(nil)
