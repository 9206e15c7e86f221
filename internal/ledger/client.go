package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
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

const serviceName = "ledger"

var tracer = otel.Tracer("github.com/mautops/ledger-bridge/internal/ledger")

// Client 表格账本 API
type Client interface {
	ListWorkspaces(ctx context.Context) ([]Workspace, error)
	GetWorkspace(ctx context.Context, workspaceID int64) (*Workspace, error)
	GetFolder(ctx context.Context, folderID int64) (*Folder, error)
	GetSheet(ctx context.Context, sheetID int64) (*Sheet, error)
	AddRows(ctx context.Context, sheetID int64, rows []NewRow) ([]Row, error)
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

// NewClient 创建基于 REST 的表格客户端
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

// ListWorkspaces 列出全部工作区
func (c *restClient) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	var out listResponse[Workspace]
	err := c.do(ctx, "list workspaces", "workspace", "", &out, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParam("includeAll", "true").Get("/workspaces")
	})
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetWorkspace 获取工作区及其文件夹
func (c *restClient) GetWorkspace(ctx context.Context, workspaceID int64) (*Workspace, error) {
	id := strconv.FormatInt(workspaceID, 10)
	var out Workspace
	err := c.do(ctx, "get workspace", "workspace", id, &out, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", id).Get("/workspaces/{id}")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFolder 获取文件夹及其表格
func (c *restClient) GetFolder(ctx context.Context, folderID int64) (*Folder, error) {
	id := strconv.FormatInt(folderID, 10)
	var out Folder
	err := c.do(ctx, "get folder", "folder", id, &out, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", id).Get("/folders/{id}")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSheet 获取表格的列与全部行
func (c *restClient) GetSheet(ctx context.Context, sheetID int64) (*Sheet, error) {
	id := strconv.FormatInt(sheetID, 10)
	var out Sheet
	err := c.do(ctx, "get sheet", "sheet", id, &out, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", id).Get("/sheets/{id}")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AddRows 向表格追加行,返回服务端确认的行
func (c *restClient) AddRows(ctx context.Context, sheetID int64, rows []NewRow) ([]Row, error) {
	id := strconv.FormatInt(sheetID, 10)
	var out addRowsResponse
	err := c.do(ctx, "add rows", "sheet", id, &out, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", id).SetBody(rows).Post("/sheets/{id}/rows")
	})
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

// do 执行请求并解码响应,失败统一转换为 UpstreamError / NotFoundError
func (c *restClient) do(ctx context.Context, op, kind, id string, result interface{}, send func(*resty.Request) (*resty.Response, error)) error {
	ctx, span := tracer.Start(ctx, "ledger."+strings.ReplaceAll(op, " ", "_"), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	if id != "" {
		span.SetAttributes(attribute.String("ledger.resource_id", id))
	}

	resp, err := send(c.http.R().SetContext(ctx).SetHeader("Content-Type", "application/json"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op)
		return &utils.UpstreamError{Service: serviceName, Operation: op, Err: err}
	}

	if resp.IsError() {
		span.SetStatus(codes.Error, resp.Status())
		if resp.StatusCode() == http.StatusNotFound && id != "" {
			return &utils.NotFoundError{Kind: kind, ID: id}
		}
		var apiErr apiErrorBody
		_ = json.Unmarshal([]byte(resp.String()), &apiErr)
		msg := apiErr.Message
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

var _ Client = (*restClient)(nil)
