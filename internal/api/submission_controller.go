package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mautops/ledger-bridge/internal/service"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SubmissionController 提交日志查询控制器
type SubmissionController struct {
	queryService service.QueryService
}

// NewSubmissionController 创建提交日志查询控制器
func NewSubmissionController(queryService service.QueryService) *SubmissionController {
	return &SubmissionController{queryService: queryService}
}

// List 分页列出提交日志
// 支持 task_id/status/kind 过滤, sort_by/order 排序
func (c *SubmissionController) List(ctx *gin.Context) {
	filter := service.ListSubmissionsFilter{
		TaskID: optionalQuery(ctx, "task_id"),
		Status: optionalQuery(ctx, "status"),
		Kind:   optionalQuery(ctx, "kind"),
		Page:   positiveQuery(ctx, "page", 1),
		SortBy: ctx.Query("sort_by"),
		Order:  ctx.Query("order"),
	}
	filter.PageSize = positiveQuery(ctx, "page_size", defaultPageSize)
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	views, total, err := c.queryService.ListSubmissions(ctx.Request.Context(), &filter)
	if err != nil {
		_ = ctx.Error(WrapError(err, StatusFor(err), "failed to list submissions"))
		return
	}

	totalPage := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	Paginated(ctx, views, PaginationInfo{
		Page:      filter.Page,
		PageSize:  filter.PageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// Get 获取单条提交日志
func (c *SubmissionController) Get(ctx *gin.Context) {
	view, err := c.queryService.GetSubmission(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		_ = ctx.Error(WrapError(err, StatusFor(err), "failed to get submission"))
		return
	}
	Success(ctx, view)
}

func optionalQuery(ctx *gin.Context, key string) *string {
	if v := ctx.Query(key); v != "" {
		return &v
	}
	return nil
}

func positiveQuery(ctx *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(ctx.Query(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
