package main

import (
	"log"
	"time"

	"github.com/blues/efs/internal/auth"
	"github.com/blues/efs/internal/chain"
	"github.com/blues/efs/internal/config"
	"github.com/blues/efs/internal/database"
	"github.com/blues/efs/internal/logger"
	"github.com/blues/efs/internal/logic"
	"github.com/blues/efs/internal/price"
	"github.com/blues/efs/internal/reconcile"
	"github.com/blues/efs/internal/router"
	"github.com/blues/efs/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	initLogger(cfg.Log)

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化链客户端
	chainManager, err := chain.NewManager(cfg.Chains)
	if err != nil {
		log.Fatalf("Failed to initialize chain clients: %v", err)
	}
	defer chainManager.Close()

	reader := chain.NewReader(chainManager, chain.DefaultReadTimeout)

	// 价格服务
	feed := price.NewFeed(cfg.Price.FeedUrl, time.Duration(cfg.Price.FeedTimeout)*time.Second)
	oracle := price.NewOracle(price.NewCache(), feed, cfg.Price, cfg.Chains)

	// 对账引擎，主生产链决定链上数据是否权威
	primaryChain, ok := cfg.PrimaryChain()
	if !ok {
		logger.Warn("No primary chain configured, on-chain figures will never be authoritative")
	}
	engine := reconcile.NewEngine(primaryChain.ChainId, oracle, 5*time.Minute)

	// 业务逻辑
	ledgerLogic := logic.NewLedgerLogic(db)
	balanceLogic := logic.NewBalanceLogic(db, reader, engine, ledgerLogic, cfg.Task.ReconcileWorkers)
	tipSplitLogic := logic.NewTipSplitLogic(db)
	submissionLogic := logic.NewSubmissionLogic(db, reader, cfg.Task.ConfirmScanLimit, func(chainId int64) (string, bool) {
		chainCfg, _ := cfg.ChainById(chainId)
		return chainCfg.NativeSymbol, chainCfg.Testnet
	})

	// 管理员鉴权
	authClient := auth.NewClient(cfg.Auth)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(router.Deps{
		AuthClient:      authClient,
		ChainManager:    chainManager,
		BalanceLogic:    balanceLogic,
		TipSplitLogic:   tipSplitLogic,
		SubmissionLogic: submissionLogic,
	})

	// 启动定时任务
	manager := task.Start(cfg, oracle, submissionLogic)
	defer manager.Stop()

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initLogger 按配置初始化全局日志
func initLogger(cfg config.LogConfig) {
	level := logger.ParseLogLevel(cfg.Level)

	var l *logger.Logger
	var err error
	if cfg.Output == "file" {
		l, err = logger.NewWithFileRotation(level, cfg.File)
	} else {
		l, err = logger.New(level)
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.SetDefaultLogger(l)
}
