package task

import (
	"context"
	"time"

	"github.com/blues/efs/internal/config"
	"github.com/blues/efs/internal/logger"
	"github.com/blues/efs/internal/price"
	"github.com/go-co-op/gocron/v2"
)

// PriceWarmupJob 价格缓存预热任务
type PriceWarmupJob struct {
	config *config.Config
	oracle *price.Oracle
}

// NewPriceWarmupJob 创建价格预热任务
func NewPriceWarmupJob(cfg *config.Config, oracle *price.Oracle) *PriceWarmupJob {
	return &PriceWarmupJob{
		config: cfg,
		oracle: oracle,
	}
}

// GetName 获取任务名称
func (j *PriceWarmupJob) GetName() string {
	return "price_cache_warmup"
}

// GetSchedule 获取调度配置
func (j *PriceWarmupJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *PriceWarmupJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	symbols := j.oracle.NativeSymbols()
	if len(symbols) == 0 {
		return
	}

	if err := j.oracle.WarmUp(ctx, symbols); err != nil {
		logger.Warn("Price warmup failed: %v", err)
		return
	}

	logger.Debug("Price cache warmed for %d symbols", len(symbols))
}
