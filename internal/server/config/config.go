package config

import (
	"fmt"

	"soylana/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config 定义整个配置的结构
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Server     ServerConfig     `mapstructure:"server"`
	HolderScan HolderScanConfig `mapstructure:"holderscan"`
	Solscan    SolscanConfig    `mapstructure:"solscan"`
	CrossCheck CrossCheckConfig `mapstructure:"crosscheck"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
}

// LogConfig Log 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // seconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // seconds，需要大于 crosscheck 超时
}

// HolderScanConfig HolderScan API 配置
type HolderScanConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	RateLimit int    `mapstructure:"rate_limit"` // 每分钟请求次数
	Timeout   int    `mapstructure:"timeout"`    // seconds
}

// SolscanConfig Solscan Pro API 配置
type SolscanConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	RateLimit int    `mapstructure:"rate_limit"`
	Timeout   int    `mapstructure:"timeout"`
}

// CrossCheckConfig 交叉查询的预算与超时边界
type CrossCheckConfig struct {
	MaxPagesPerToken   int `mapstructure:"max_pages_per_token"`   // 单 token 页数上限
	MaxHoldersPerToken int `mapstructure:"max_holders_per_token"` // 单 token 持有人数量上限
	PageSize           int `mapstructure:"page_size"`
	DisplayCap         int `mapstructure:"display_cap"` // 返回给前端的最大钱包数
	Timeout            int `mapstructure:"timeout"`     // seconds，整体墙钟超时
	FetchConcurrency   int `mapstructure:"fetch_concurrency"`
}

// CacheConfig 代币元数据缓存配置
type CacheConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Address  string `mapstructure:"address"` // redis 地址，留空则只用本地缓存
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TokenTTL int    `mapstructure:"token_ttl"` // seconds
}

type MonitorConfig struct {
	Enable         bool   `mapstructure:"enable"`
	PrometheusAddr string `mapstructure:"prometheus_addr"`
}

func InitConfig() Config {
	var config Config

	viper.SetConfigName("config.server")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config/")

	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}

	if err := mapstructure.Decode(viper.AllSettings(), &config); err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}

	applyDefaults(&config)

	return config
}

// applyDefaults 交叉查询的边界值兜底，避免配置缺失时预算为 0
func applyDefaults(config *Config) {
	cc := &config.CrossCheck
	if cc.MaxPagesPerToken <= 0 {
		cc.MaxPagesPerToken = 10
	}
	if cc.MaxHoldersPerToken <= 0 {
		cc.MaxHoldersPerToken = 1000
	}
	if cc.PageSize <= 0 || cc.PageSize > 100 {
		cc.PageSize = 100
	}
	if cc.DisplayCap <= 0 {
		cc.DisplayCap = 100
	}
	if cc.Timeout <= 0 {
		cc.Timeout = 180
	}
	if cc.FetchConcurrency <= 0 {
		cc.FetchConcurrency = 5
	}
}

func WatchConfig(config *Config) {
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		newConfig := InitConfig()
		*config = newConfig
		logger.SetLogLevel(config.Log.Level)
	})
}
