package config

import (
	"github.com/blues/efs/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig           `mapstructure:"server"`
	Database DatabaseConfig         `mapstructure:"database"`
	Chains   map[string]ChainConfig `mapstructure:"chains"`
	Price    PriceConfig            `mapstructure:"price"`
	Auth     AuthConfig             `mapstructure:"auth"`
	Task     TaskConfig             `mapstructure:"task"`
	Log      LogConfig              `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ChainConfig 单链配置
type ChainConfig struct {
	ChainId      int64  `mapstructure:"chain_id"`      // 链ID
	RpcUrl       string `mapstructure:"rpc_url"`       // RPC节点URL
	NativeSymbol string `mapstructure:"native_symbol"` // 原生币符号 (ETH, MATIC, etc.)
	Decimals     int    `mapstructure:"decimals"`      // 原生币小数位数，按链配置不硬编码
	Testnet      bool   `mapstructure:"testnet"`       // 是否测试网
	Primary      bool   `mapstructure:"primary"`       // 是否平台主生产链
}

// PriceConfig 价格服务配置
type PriceConfig struct {
	FeedUrl       string             `mapstructure:"feed_url"`       // 实时行情接口地址
	FeedTimeout   int                `mapstructure:"feed_timeout"`   // 行情请求超时（秒）
	LiveTTL       int                `mapstructure:"live_ttl"`       // 实时报价缓存时长（秒）
	FallbackTTL   int                `mapstructure:"fallback_ttl"`   // 兜底报价缓存时长（秒）
	FallbackRates map[string]float64 `mapstructure:"fallback_rates"` // 静态兜底价 symbol -> USD
}

// AuthConfig 管理员鉴权协作方配置
type AuthConfig struct {
	VerifyUrl string `mapstructure:"verify_url"` // token 校验接口
	Timeout   int    `mapstructure:"timeout"`    // 请求超时（秒）
}

type TaskConfig struct {
	Interval         int `mapstructure:"interval"`          // 定时任务间隔（秒）
	ReconcileWorkers int `mapstructure:"reconcile_workers"` // 对账并发上限
	ConfirmScanLimit int `mapstructure:"confirm_scan_limit"` // 确认兜底扫描的最大活动数
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// PrimaryChain 返回主生产链配置，未配置时返回 false
func (c *Config) PrimaryChain() (ChainConfig, bool) {
	for _, chain := range c.Chains {
		if chain.Primary && !chain.Testnet {
			return chain, true
		}
	}
	return ChainConfig{}, false
}

// ChainById 按链ID查找链配置
func (c *Config) ChainById(chainId int64) (ChainConfig, bool) {
	for _, chain := range c.Chains {
		if chain.ChainId == chainId {
			return chain, true
		}
	}
	return ChainConfig{}, false
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/efs")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "edition_funding")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("price.feed_timeout", 10)
	viper.SetDefault("price.live_ttl", 300)
	viper.SetDefault("price.fallback_ttl", 60)
	viper.SetDefault("auth.timeout", 5)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("task.reconcile_workers", 10)
	viper.SetDefault("task.confirm_scan_limit", 50)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
