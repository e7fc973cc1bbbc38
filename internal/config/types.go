package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper/pflag 可以识别诸如 "1440h"、"90m" 或纯数字秒值等写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// LogConfig 描述日志输出行为，文件路径为空时写入 fallback（通常是 stderr）。
type LogConfig struct {
	LogLevel      string `mapstructure:"log-level"`
	LogFilePath   string `mapstructure:"log-file"`
	LogMaxSize    int    `mapstructure:"log-max-size"`
	LogMaxBackups int    `mapstructure:"log-max-backups"`
	LogCompress   bool   `mapstructure:"log-compress"`
}

// CheckpointConfig 控制 Roo 任务目录下 checkpoints 的清理。
type CheckpointConfig struct {
	Enabled bool     `mapstructure:"clean-roo-checkpoints"`
	Roots   []string `mapstructure:"checkpoint-root"`
	MaxAge  Duration `mapstructure:"checkpoint-age"`
}

// Config 汇总一次运行所需的全部参数，全部来源于命令行及其默认值。
type Config struct {
	CachePath  string           `mapstructure:"path"`
	DryRun     bool             `mapstructure:"dry-run"`
	Verbose    bool             `mapstructure:"verbose"`
	Keep       int              `mapstructure:"keep"`
	Checkpoint CheckpointConfig `mapstructure:",squash"`
	Log        LogConfig        `mapstructure:",squash"`
}

// Mode 输出 `dry-run` 或 `live`，供日志字段使用。
func (c *Config) Mode() string {
	if c.DryRun {
		return "dry-run"
	}
	return "live"
}
