package task

import (
	"context"
	"time"

	"github.com/blues/efs/internal/config"
	"github.com/blues/efs/internal/logger"
	"github.com/blues/efs/internal/logic"
	"github.com/go-co-op/gocron/v2"
)

// SubmissionConfirmJob 待确认申请的后台确认任务
type SubmissionConfirmJob struct {
	config          *config.Config
	submissionLogic *logic.SubmissionLogic
}

// NewSubmissionConfirmJob 创建申请确认任务
func NewSubmissionConfirmJob(cfg *config.Config, submissionLogic *logic.SubmissionLogic) *SubmissionConfirmJob {
	return &SubmissionConfirmJob{
		config:          cfg,
		submissionLogic: submissionLogic,
	}
}

// GetName 获取任务名称
func (j *SubmissionConfirmJob) GetName() string {
	return "submission_confirm_updater"
}

// GetSchedule 获取调度配置
func (j *SubmissionConfirmJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *SubmissionConfirmJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	j.submissionLogic.ConfirmPendingSubmissions(ctx)

	logger.Debug("Submission confirm task completed")
}
