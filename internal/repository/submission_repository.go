package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mautops/ledger-bridge/internal/model"
	"github.com/mautops/ledger-bridge/internal/utils"
	"gorm.io/gorm"
)

// SubmissionSortFields 允许排序的列
var SubmissionSortFields = []string{"created_at", "updated_at", "finished_at", "distance", "total_distance", "status"}

// SubmissionRepository 提交日志仓储接口
type SubmissionRepository interface {
	Create(ctx context.Context, s *model.SubmissionModel) error
	Save(ctx context.Context, s *model.SubmissionModel) error
	FindByID(ctx context.Context, id string) (*model.SubmissionModel, error)
	FindByFilter(ctx context.Context, filter *SubmissionFilter) ([]*model.SubmissionModel, int64, error)
}

// SubmissionFilter 提交日志查询过滤器
type SubmissionFilter struct {
	TaskID   *string
	Status   *string
	Kind     *string
	Page     int
	PageSize int
	SortBy   string
	Order    string
}

// submissionRepository 提交日志仓储实现
type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository 创建提交日志仓储
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create 创建提交日志
func (r *submissionRepository) Create(ctx context.Context, s *model.SubmissionModel) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(s).Error
}

// Save 更新提交日志
func (r *submissionRepository) Save(ctx context.Context, s *model.SubmissionModel) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(s).Error
}

// FindByID 根据 ID 查找提交日志
func (r *submissionRepository) FindByID(ctx context.Context, id string) (*model.SubmissionModel, error) {
	var s model.SubmissionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Kind: "submission", ID: id}
		}
		return nil, err
	}
	return &s, nil
}

// FindByFilter 按条件分页查询,返回当前页与总数
func (r *submissionRepository) FindByFilter(ctx context.Context, filter *SubmissionFilter) ([]*model.SubmissionModel, int64, error) {
	if filter == nil {
		filter = &SubmissionFilter{}
	}
	query := r.db.WithContext(ctx).Model(&model.SubmissionModel{})

	if filter.TaskID != nil {
		query = query.Where("task_id = ?", *filter.TaskID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	// 验证排序字段,防止 SQL 注入
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	if err := utils.ValidateSortField(sortBy, SubmissionSortFields); err != nil {
		return nil, 0, utils.NewValidationError("INVALID_SORT", "invalid sort field: %v", err)
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, utils.SanitizeSortOrder(filter.Order)))

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var list []*model.SubmissionModel
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query submissions: %w", err)
	}

	return list, total, nil
}
