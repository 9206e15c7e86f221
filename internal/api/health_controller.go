package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// QueueStats 队列状态
type QueueStats interface {
	Pending() int
}

// HealthController 健康检查控制器
type HealthController struct {
	db    *gorm.DB
	queue QueueStats
}

// NewHealthController 创建健康检查控制器
func NewHealthController(db *gorm.DB, queue QueueStats) *HealthController {
	return &HealthController{
		db:    db,
		queue: queue,
	}
}

// Check 健康检查
// 只检查本地依赖; 外部系统不可用不影响健康状态
func (c *HealthController) Check(ctx *gin.Context) {
	status := "healthy"
	checks := make(map[string]interface{})

	if c.db != nil {
		if err := c.checkDatabase(ctx.Request.Context()); err != nil {
			status = "unhealthy"
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "healthy"
		}
	} else {
		checks["database"] = "not configured"
	}

	if c.queue != nil {
		checks["queue_pending"] = c.queue.Pending()
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	ctx.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

// checkDatabase 检查数据库连接
func (c *HealthController) checkDatabase(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}
