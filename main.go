package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/any-hub/cleanpkgcache/internal/cache"
	"github.com/any-hub/cleanpkgcache/internal/checkpoint"
	"github.com/any-hub/cleanpkgcache/internal/config"
	"github.com/any-hub/cleanpkgcache/internal/logging"
	"github.com/any-hub/cleanpkgcache/internal/report"
	"github.com/any-hub/cleanpkgcache/internal/retention"
)

// cliOptions 汇总 CLI 解析后的结果，便于在测试中注入。
type cliOptions struct {
	flags       *pflag.FlagSet
	args        []string
	showVersion bool
	// parsed 为 false 表示 cobra 已处理 --help，无需继续执行。
	parsed bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr

	userConfigDir = os.UserConfigDir
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	if !opts.parsed {
		os.Exit(0)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行清理流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.flags, opts.args)
	if err != nil {
		fmt.Fprintf(stdErr, "参数校验失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Log, stdErr)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	entry := logger.WithField("run_id", logging.NewRunID())
	fields := logging.BaseFields("startup", cfg.CachePath)
	fields["mode"] = cfg.Mode()
	fields["keep"] = cfg.Keep
	fields["clean_checkpoints"] = cfg.Checkpoint.Enabled
	entry.WithFields(fields).Info("参数加载完成")

	if err := clean(context.Background(), cfg, report.NewPrinter(stdOut), entry); err != nil {
		entry.WithError(err).Error("清理中止")
		fmt.Fprintf(stdErr, "清理失败: %v\n", err)
		return 1
	}
	return 0
}

// clean 先清理包缓存，再按需清理 checkpoints。
// 包缓存目录不可用时，只有在同时请求了 checkpoints 清理的情况下才跳过而不报错。
func clean(ctx context.Context, cfg *config.Config, printer *report.Printer, logger logrus.FieldLogger) error {
	if cfg.DryRun {
		printer.DryRunBanner()
	}

	store, err := cache.NewStore(cfg.CachePath)
	switch {
	case err == nil:
		printer.CleaningPackages(store.Root())
		cleaner := retention.NewCleaner(store, retention.Options{
			Policy:  retention.Policy{Keep: cfg.Keep},
			DryRun:  cfg.DryRun,
			Verbose: cfg.Verbose,
		}, printer, logger.WithFields(logging.BaseFields("clean_packages", store.Root())))
		if _, err := cleaner.Run(ctx); err != nil {
			return err
		}
	case cfg.Checkpoint.Enabled && (errors.Is(err, cache.ErrRootNotFound) || errors.Is(err, cache.ErrRootNotDirectory)):
		logger.WithFields(logging.BaseFields("skip_packages", cfg.CachePath)).Warn(err.Error())
	default:
		return err
	}

	if !cfg.Checkpoint.Enabled {
		return nil
	}

	roots := cfg.Checkpoint.Roots
	if len(roots) == 0 {
		dir, err := userConfigDir()
		if err != nil {
			return fmt.Errorf("定位用户配置目录失败: %w", err)
		}
		roots = checkpoint.DefaultRoots(dir)
	}

	pruner := checkpoint.NewPruner(checkpoint.Options{
		Roots:     roots,
		Threshold: cfg.Checkpoint.MaxAge.DurationValue(),
		DryRun:    cfg.DryRun,
		Verbose:   cfg.Verbose,
	}, printer, logger.WithField("action", "clean_checkpoints"))
	_, err = pruner.Run(ctx)
	return err
}

// parseCLIFlags 通过 cobra 解析参数；flag 的含义与默认值由 config.RegisterFlags 统一声明。
func parseCLIFlags(args []string) (cliOptions, error) {
	var opts cliOptions
	if args == nil {
		args = []string{}
	}

	cmd := newRootCommand(&opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdOut)
	cmd.SetErr(io.Discard)

	if err := cmd.Execute(); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}
	return opts, nil
}

func newRootCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cleanpkgcache [path]",
		Short:         "清理包缓存，每个包只保留最新的 2 个版本",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.flags = cmd.Flags()
			opts.args = args
			opts.parsed = true
			return nil
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().BoolVar(&opts.showVersion, "version", false, "显示版本信息")
	return cmd
}
