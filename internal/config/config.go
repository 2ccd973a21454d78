package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "settings.json"

type Config struct {
	BackupPath    string          `mapstructure:"backup_path"`
	Log           LogConfig       `mapstructure:"log"`
	MySQL         MySQLConfig     `mapstructure:"mysql"`
	MySQLDump     MySQLDumpConfig `mapstructure:"mysqldump"`
	Exclude       []string        `mapstructure:"exclude"`
	Schedule      string          `mapstructure:"schedule"`
	UploadTargets []UploadTarget  `mapstructure:"upload_targets"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type MySQLConfig struct {
	Bin         string        `mapstructure:"bin"`
	AccountFile string        `mapstructure:"account_file"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type MySQLDumpConfig struct {
	Bin         string        `mapstructure:"bin"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
	ExtraArgs   []string      `mapstructure:"extra_args"`
}

type UploadTarget struct {
	Type    string `mapstructure:"type"`
	Enabled bool   `mapstructure:"enabled"`

	// Google Drive
	CredentialsFile string `mapstructure:"credentials_file"`
	FolderID        string `mapstructure:"folder_id"`

	// AWS S3
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`

	// Telegram
	BotToken   string `mapstructure:"bot_token"`
	ChatID     string `mapstructure:"chat_id"`
	SendFile   bool   `mapstructure:"send_file"`
	NotifyOnly bool   `mapstructure:"notify_only"`
}

// Load reads the settings file at path. An empty path means settings.json in
// the current working directory. There is no fallback configuration: a missing
// or malformed file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		path = filepath.Join(wd, DefaultFile)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}

	v.SetEnvPrefix("mysqlbackup")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("mysql.bin", "mysql")
	v.SetDefault("mysql.timeout", time.Minute)
	v.SetDefault("mysqldump.bin", "mysqldump")
	v.SetDefault("mysqldump.timeout", 2*time.Hour)
	v.SetDefault("mysqldump.concurrency", 1)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.BackupPath == "" {
		return errors.New("backup_path is required")
	}
	if c.Log.File == "" {
		return errors.New("log.file is required")
	}
	if c.MySQL.Bin == "" {
		return errors.New("mysql.bin is required")
	}
	if c.MySQL.AccountFile == "" {
		return errors.New("mysql.account_file is required")
	}
	if c.MySQLDump.Bin == "" {
		return errors.New("mysqldump.bin is required")
	}
	if c.MySQL.Timeout < 0 {
		return errors.New("mysql.timeout must not be negative")
	}
	if c.MySQLDump.Timeout < 0 {
		return errors.New("mysqldump.timeout must not be negative")
	}
	if c.MySQLDump.Concurrency < 1 {
		return fmt.Errorf("mysqldump.concurrency must be at least 1, got %d", c.MySQLDump.Concurrency)
	}

	if c.Schedule != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(c.Schedule); err != nil {
			return fmt.Errorf("schedule: %w", err)
		}
	}

	for i, target := range c.UploadTargets {
		if target.Type == "" {
			return fmt.Errorf("upload_targets[%d]: type is required", i)
		}
	}

	return nil
}

// Resolve checks that every external path the run depends on is usable and
// rewrites the binaries to their absolute locations. It must succeed before
// any dump is attempted.
func (c *Config) Resolve() error {
	mysqlBin, err := exec.LookPath(c.MySQL.Bin)
	if err != nil {
		return fmt.Errorf("mysql.bin: %w", err)
	}

	dumpBin, err := exec.LookPath(c.MySQLDump.Bin)
	if err != nil {
		return fmt.Errorf("mysqldump.bin: %w", err)
	}

	info, err := os.Stat(c.MySQL.AccountFile)
	if err != nil {
		return fmt.Errorf("mysql.account_file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("mysql.account_file: %s is a directory", c.MySQL.AccountFile)
	}

	c.MySQL.Bin = mysqlBin
	c.MySQLDump.Bin = dumpBin
	return nil
}

func (c *Config) GetEnabledUploadTargets() []UploadTarget {
	var enabled []UploadTarget
	for _, target := range c.UploadTargets {
		if target.Enabled {
			enabled = append(enabled, target)
		}
	}
	return enabled
}
