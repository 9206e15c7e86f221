package model

import (
	"errors"
	"time"
)

// 提交类型
const (
	SubmissionKindMileage   = "mileage"
	SubmissionKindWorksheet = "worksheet"
)

// 提交状态
const (
	SubmissionStatusQueued    = "queued"
	SubmissionStatusRunning   = "running"
	SubmissionStatusSucceeded = "succeeded"
	SubmissionStatusFailed    = "failed"
)

// 提交执行到的阶段,失败时用于判断哪些外部写入已经发生
const (
	StageValidated     = "validated"
	StageLedgerWritten = "ledger_written"
	StageAggregated    = "aggregated"
	StageTaskUpdated   = "task_updated"
)

// SubmissionModel 表单提交日志
// 账本表格才是数据来源,这里只记录每次提交的处理过程
type SubmissionModel struct {
	ID            string     `gorm:"primaryKey;type:varchar(64)"`
	TaskID        string     `gorm:"type:varchar(64);not null;index"`
	UserID        string     `gorm:"type:varchar(64);index"`
	Kind          string     `gorm:"type:varchar(16);not null;index"`
	Status        string     `gorm:"type:varchar(16);not null;index"`
	Stage         string     `gorm:"type:varchar(32)"`
	Distance      float64    `gorm:"type:numeric"`
	TotalDistance float64    `gorm:"type:numeric"`
	RowCount      int        `gorm:"type:int"`
	Error         string     `gorm:"type:text"`
	Values        []byte     `gorm:"type:jsonb"` // 提交的表单值
	RequestID     string     `gorm:"type:varchar(64);index"`
	CreatedAt     time.Time  `gorm:"not null;index"`
	UpdatedAt     time.Time  `gorm:"not null"`
	FinishedAt    *time.Time `gorm:"index"`
}

// TableName 指定表名
func (SubmissionModel) TableName() string {
	return "submissions"
}

// Validate 验证提交日志模型
func (sm *SubmissionModel) Validate() error {
	if sm.ID == "" {
		return errors.New("submission ID is required")
	}
	if sm.TaskID == "" {
		return errors.New("task ID is required")
	}
	switch sm.Kind {
	case SubmissionKindMileage, SubmissionKindWorksheet:
	default:
		return errors.New("invalid submission kind")
	}
	switch sm.Status {
	case SubmissionStatusQueued, SubmissionStatusRunning, SubmissionStatusSucceeded, SubmissionStatusFailed:
	default:
		return errors.New("invalid submission status")
	}
	return nil
}

// IsFinished 是否已结束
func (sm *SubmissionModel) IsFinished() bool {
	return sm.Status == SubmissionStatusSucceeded || sm.Status == SubmissionStatusFailed
}
