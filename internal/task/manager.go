package task

import (
	"github.com/blues/efs/internal/config"
	"github.com/blues/efs/internal/logger"
	"github.com/blues/efs/internal/logic"
	"github.com/blues/efs/internal/price"
	"github.com/go-co-op/gocron/v2"
)

// Manager 任务管理器
type Manager struct {
	scheduler       gocron.Scheduler
	config          *config.Config
	oracle          *price.Oracle
	submissionLogic *logic.SubmissionLogic
}

// NewManager 创建新的任务管理器
func NewManager(cfg *config.Config, oracle *price.Oracle, submissionLogic *logic.SubmissionLogic) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler:       s,
		config:          cfg,
		oracle:          oracle,
		submissionLogic: submissionLogic,
	}
}

// Start 启动任务管理器
func Start(cfg *config.Config, oracle *price.Oracle, submissionLogic *logic.SubmissionLogic) *Manager {
	manager := NewManager(cfg, oracle, submissionLogic)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 注册价格预热任务
	m.RegisterPriceWarmupJob()

	// 注册申请确认任务
	m.RegisterSubmissionConfirmJob()
}

// RegisterPriceWarmupJob 注册价格预热任务
func (m *Manager) RegisterPriceWarmupJob() {
	job := NewPriceWarmupJob(m.config, m.oracle)

	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// RegisterSubmissionConfirmJob 注册申请确认任务
func (m *Manager) RegisterSubmissionConfirmJob() {
	job := NewSubmissionConfirmJob(m.config, m.submissionLogic)

	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
