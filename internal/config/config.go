package config

import (
	yamlenv "github.com/ifuryst/go-yaml-env"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/pkg/logger"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logger     logger.Config    `yaml:"logger"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Automation AutomationConfig `yaml:"automation"`
	Platforms  PlatformsConfig  `yaml:"platforms"`
	Media      MediaConfig      `yaml:"media"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Mode     string `yaml:"mode"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
}

// SchedulerConfig drives the post lifecycle engine and its due-check cadence.
// Intervals and delays are Go duration strings ("5m", "60s").
type SchedulerConfig struct {
	Enabled        bool   `yaml:"enabled"`
	CheckInterval  string `yaml:"check_interval"`
	MaxAttempts    int    `yaml:"max_attempts"`
	RetryDelayBase string `yaml:"retry_delay_base"`
	PublishTimeout string `yaml:"publish_timeout"`
	PublishPause   string `yaml:"publish_pause"`
}

type AutomationConfig struct {
	SweepInterval   string            `yaml:"sweep_interval"`
	AutoReply       bool              `yaml:"auto_reply"`
	ReplyPatterns   map[string]string `yaml:"reply_patterns"`
	RecentPostLimit int               `yaml:"recent_post_limit"`
	StatsCron       string            `yaml:"stats_cron"`
}

type PlatformsConfig struct {
	Facebook  FacebookConfig  `yaml:"facebook"`
	Instagram InstagramConfig `yaml:"instagram"`
	Twitter   TwitterConfig   `yaml:"twitter"`
}

type FacebookConfig struct {
	Enabled     bool   `yaml:"enabled"`
	AppID       string `yaml:"app_id"`
	AppSecret   string `yaml:"app_secret"`
	AccessToken string `yaml:"access_token"`
	PageID      string `yaml:"page_id"`
	APIVersion  string `yaml:"api_version"`
}

type InstagramConfig struct {
	Enabled           bool   `yaml:"enabled"`
	AccessToken       string `yaml:"access_token"`
	BusinessAccountID string `yaml:"business_account_id"`
	APIVersion        string `yaml:"api_version"`
}

type TwitterConfig struct {
	Enabled      bool   `yaml:"enabled"`
	APIKey       string `yaml:"api_key"`
	APISecret    string `yaml:"api_secret"`
	AccessToken  string `yaml:"access_token"`
	AccessSecret string `yaml:"access_secret"`
}

type MediaConfig struct {
	MaxFileSize int64  `yaml:"max_file_size"`
	UploadPath  string `yaml:"upload_path"`
}

func LoadConfig(configPath string) (*Config, error) {
	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)

	return cfg, nil
}

// ApplyDefaults fills in every unset field with its startup default.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.TimeZone == "" {
		cfg.Database.TimeZone = "UTC"
	}
	if cfg.Scheduler.CheckInterval == "" {
		cfg.Scheduler.CheckInterval = "5m"
	}
	if cfg.Scheduler.MaxAttempts == 0 {
		cfg.Scheduler.MaxAttempts = 3
	}
	if cfg.Scheduler.RetryDelayBase == "" {
		cfg.Scheduler.RetryDelayBase = "60s"
	}
	if cfg.Scheduler.PublishTimeout == "" {
		cfg.Scheduler.PublishTimeout = "30s"
	}
	if cfg.Scheduler.PublishPause == "" {
		cfg.Scheduler.PublishPause = "2s"
	}
	if cfg.Automation.SweepInterval == "" {
		cfg.Automation.SweepInterval = "5m"
	}
	if cfg.Automation.RecentPostLimit == 0 {
		cfg.Automation.RecentPostLimit = 5
	}
	if cfg.Automation.StatsCron == "" {
		cfg.Automation.StatsCron = "10 0 * * *"
	}
	if cfg.Platforms.Facebook.APIVersion == "" {
		cfg.Platforms.Facebook.APIVersion = "v18.0"
	}
	if cfg.Platforms.Instagram.APIVersion == "" {
		cfg.Platforms.Instagram.APIVersion = "v18.0"
	}
	if cfg.Media.MaxFileSize == 0 {
		cfg.Media.MaxFileSize = 50 * 1024 * 1024
	}
	if cfg.Media.UploadPath == "" {
		cfg.Media.UploadPath = "data/media"
	}
}
