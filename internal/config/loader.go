package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// DefaultCachePath 是未提供位置参数时清理的包缓存目录。
	DefaultCachePath = `C:\PkgCache\VC17LTCG`
	// DefaultKeep 为每个包默认保留的最新版本数量。
	DefaultKeep = 2
	// DefaultCheckpointAge 约等于两个月。
	DefaultCheckpointAge = 60 * 24 * time.Hour
	// DefaultLogLevel 默认只输出告警，避免与文本报告混在一起。
	DefaultLogLevel = "warn"
)

// RegisterFlags 在 FlagSet 上声明全部命令行参数，Load 通过 viper 读取它们。
func RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolP("dry-run", "d", false, "仅预览将被删除的目录，不执行删除")
	fs.BoolP("verbose", "v", false, "输出每个包/任务的详细信息")
	fs.Int("keep", DefaultKeep, "每个包保留的最新版本数量")
	fs.Bool("clean-roo-checkpoints", false, "同时清理超过保留期的 Roo checkpoints")
	fs.StringArray("checkpoint-root", nil, "Roo 任务目录（可重复，默认使用已注册的安装位置）")
	fs.String("checkpoint-age", DefaultCheckpointAge.String(), "checkpoints 保留期，支持 Go Duration 或秒数")
	fs.String("log-level", DefaultLogLevel, "日志级别 (debug|info|warn|error)")
	fs.String("log-file", "", "日志文件路径，留空则写入 stderr")
	fs.Int("log-max-size", 100, "单个日志文件大小上限 (MB)")
	fs.Int("log-max-backups", 10, "保留的历史日志文件数量")
	fs.Bool("log-compress", true, "是否压缩历史日志")
}

// Load 将命令行参数与默认值合并为 Config，并完成校验。
// args 为去掉 flag 之后的位置参数，第一个视为包缓存目录。
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("最多接受一个缓存目录参数，得到 %d 个", len(args))
	}

	v := viper.New()
	setDefaults(v)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("绑定命令行参数失败: %w", err)
		}
	}
	if len(args) == 1 {
		v.Set("path", args[0])
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("解析参数失败: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("无法解析缓存目录: %w", err)
	}
	cfg.CachePath = absPath

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("path", DefaultCachePath)
	v.SetDefault("keep", DefaultKeep)
	v.SetDefault("checkpoint-age", DefaultCheckpointAge.String())
	v.SetDefault("log-level", DefaultLogLevel)
	v.SetDefault("log-file", "")
	v.SetDefault("log-max-size", 100)
	v.SetDefault("log-max-backups", 10)
	v.SetDefault("log-compress", true)
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.CachePath) == "" {
		cfg.CachePath = DefaultCachePath
	}
	if strings.TrimSpace(cfg.Log.LogLevel) == "" {
		cfg.Log.LogLevel = DefaultLogLevel
	}
	cfg.Log.LogLevel = strings.ToLower(strings.TrimSpace(cfg.Log.LogLevel))

	roots := cfg.Checkpoint.Roots[:0]
	for _, root := range cfg.Checkpoint.Roots {
		if trimmed := strings.TrimSpace(root); trimmed != "" {
			roots = append(roots, trimmed)
		}
	}
	cfg.Checkpoint.Roots = roots
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
