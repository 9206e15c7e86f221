package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mautops/ledger-bridge/internal/model"
	"github.com/mautops/ledger-bridge/internal/repository"
)

// QueryService 提交日志查询服务
type QueryService interface {
	ListSubmissions(ctx context.Context, filter *ListSubmissionsFilter) ([]*SubmissionView, int64, error)
	GetSubmission(ctx context.Context, id string) (*SubmissionView, error)
}

// ListSubmissionsFilter 提交日志列表过滤器
type ListSubmissionsFilter struct {
	TaskID   *string
	Status   *string
	Kind     *string
	Page     int
	PageSize int
	SortBy   string
	Order    string
}

// SubmissionView 提交日志的对外表示
type SubmissionView struct {
	ID            string          `json:"id"`
	TaskID        string          `json:"task_id"`
	UserID        string          `json:"user_id,omitempty"`
	Kind          string          `json:"kind"`
	Status        string          `json:"status"`
	Stage         string          `json:"stage,omitempty"`
	Distance      float64         `json:"distance"`
	TotalDistance float64         `json:"total_distance"`
	RowCount      int             `json:"row_count"`
	Error         string          `json:"error,omitempty"`
	Values        json.RawMessage `json:"values,omitempty"`
	RequestID     string          `json:"request_id,omitempty"`
	CreatedAt     string          `json:"created_at"`
	FinishedAt    string          `json:"finished_at,omitempty"`
}

// queryService 查询服务实现
type queryService struct {
	repo repository.SubmissionRepository
}

// NewQueryService 创建查询服务
func NewQueryService(repo repository.SubmissionRepository) QueryService {
	return &queryService{repo: repo}
}

// ListSubmissions 分页列出提交日志
func (s *queryService) ListSubmissions(ctx context.Context, filter *ListSubmissionsFilter) ([]*SubmissionView, int64, error) {
	if filter == nil {
		filter = &ListSubmissionsFilter{}
	}

	models, total, err := s.repo.FindByFilter(ctx, &repository.SubmissionFilter{
		TaskID:   filter.TaskID,
		Status:   filter.Status,
		Kind:     filter.Kind,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		SortBy:   filter.SortBy,
		Order:    filter.Order,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	views := make([]*SubmissionView, 0, len(models))
	for _, m := range models {
		views = append(views, toSubmissionView(m))
	}
	return views, total, nil
}

// GetSubmission 获取单条提交日志
func (s *queryService) GetSubmission(ctx context.Context, id string) (*SubmissionView, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return toSubmissionView(m), nil
}

func toSubmissionView(m *model.SubmissionModel) *SubmissionView {
	v := &SubmissionView{
		ID:            m.ID,
		TaskID:        m.TaskID,
		UserID:        m.UserID,
		Kind:          m.Kind,
		Status:        m.Status,
		Stage:         m.Stage,
		Distance:      m.Distance,
		TotalDistance: m.TotalDistance,
		RowCount:      m.RowCount,
		Error:         m.Error,
		RequestID:     m.RequestID,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
	if len(m.Values) > 0 && json.Valid(m.Values) {
		v.Values = json.RawMessage(m.Values)
	}
	if m.FinishedAt != nil {
		v.FinishedAt = m.FinishedAt.Format(time.RFC3339)
	}
	return v
}
