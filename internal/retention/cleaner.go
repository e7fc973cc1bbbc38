package retention

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/cleanpkgcache/internal/cache"
	"github.com/any-hub/cleanpkgcache/internal/logging"
	"github.com/any-hub/cleanpkgcache/internal/report"
)

// Options 控制一次包缓存清理。
type Options struct {
	Policy  Policy
	DryRun  bool
	Verbose bool
}

// Cleaner 枚举 Store 中的包，按 Policy 删除多余版本。
type Cleaner struct {
	store   cache.Store
	opts    Options
	printer *report.Printer
	logger  logrus.FieldLogger
}

// NewCleaner 构造 Cleaner；printer/logger 为空时分别丢弃文本输出与日志。
func NewCleaner(store cache.Store, opts Options, printer *report.Printer, logger logrus.FieldLogger) *Cleaner {
	if printer == nil {
		printer = report.NewPrinter(nil)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Cleaner{
		store:   store,
		opts:    opts,
		printer: printer,
		logger:  logger,
	}
}

// Run 执行清理并返回汇总。任何读取或删除失败都会立即中止，已完成的删除不会回滚，
// 此时不输出汇总。
func (c *Cleaner) Run(ctx context.Context) (report.PackageSummary, error) {
	summary := report.PackageSummary{DryRun: c.opts.DryRun}

	packages, err := c.store.Packages(ctx)
	if err != nil {
		return summary, err
	}
	summary.Packages = len(packages)

	for _, pkg := range packages {
		kept, deleted := c.opts.Policy.Apply(pkg.Versions)

		if c.opts.Verbose {
			c.printer.PackageListing(pkg.Name, versionLines(pkg.Versions))
		}

		for _, v := range kept {
			if c.opts.Verbose {
				c.printer.Keeping(v.Name())
			}
			summary.Kept++
		}

		for _, v := range deleted {
			c.printer.Deleting(v.Path, c.opts.DryRun)
			entry := c.logger.WithFields(logging.VersionFields(pkg.Name, v.Name(), v.Path, c.opts.DryRun))
			if !c.opts.DryRun {
				if err := c.store.Remove(ctx, v.Locator); err != nil {
					entry.WithError(err).Error("删除版本目录失败")
					return summary, err
				}
				entry.Info("已删除版本目录")
			} else {
				entry.Debug("预览删除版本目录")
			}
			summary.Deleted++
		}
	}

	c.printer.PackageSummary(summary)
	c.logger.WithFields(summary.Fields()).Info("包缓存清理完成")
	return summary, nil
}

func versionLines(versions []cache.Version) []report.VersionLine {
	lines := make([]report.VersionLine, len(versions))
	for i, v := range versions {
		lines[i] = report.VersionLine{Name: v.Name(), ModTime: v.ModTime}
	}
	return lines
}
