// Package report 负责面向用户的文本输出：删除预览、详细列表与汇总。
// 结构化日志由 logging 包负责，两者互不替代。
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// TimestampLayout 是详细模式下版本/任务时间戳的显示格式。
const TimestampLayout = "2006-01-02 15:04:05 MST"

// PackageSummary 汇总一次包缓存清理的结果。
type PackageSummary struct {
	Packages int  `json:"packages"`
	Kept     int  `json:"kept"`
	Deleted  int  `json:"deleted"`
	DryRun   bool `json:"dry_run"`
}

// Fields 将汇总转换为日志字段。
func (s PackageSummary) Fields() logrus.Fields {
	return logrus.Fields{
		"packages": s.Packages,
		"kept":     s.Kept,
		"deleted":  s.Deleted,
		"dry_run":  s.DryRun,
	}
}

// CheckpointSummary 汇总一次 checkpoints 清理的结果。
type CheckpointSummary struct {
	Tasks       int  `json:"tasks"`
	Checkpoints int  `json:"checkpoints"`
	DryRun      bool `json:"dry_run"`
}

// Fields 将汇总转换为日志字段。
func (s CheckpointSummary) Fields() logrus.Fields {
	return logrus.Fields{
		"tasks":       s.Tasks,
		"checkpoints": s.Checkpoints,
		"dry_run":     s.DryRun,
	}
}

// Printer 将清理过程逐行写入 io.Writer；写入错误被忽略，与 fmt.Println 行为一致。
type Printer struct {
	out io.Writer
}

// NewPrinter 创建写入 out 的 Printer，out 为空时丢弃所有输出。
func NewPrinter(out io.Writer) *Printer {
	if out == nil {
		out = io.Discard
	}
	return &Printer{out: out}
}

func (p *Printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

// DryRunBanner 提示当前为预览模式。
func (p *Printer) DryRunBanner() {
	p.printf("DRY RUN 模式 - 不会删除任何文件\n")
}

// CleaningPackages 输出包缓存清理的起始行。
func (p *Printer) CleaningPackages(root string) {
	p.printf("清理包缓存: %s\n", root)
}

// VersionLine 是详细列表中的一行。
type VersionLine struct {
	Name    string
	ModTime time.Time
}

// PackageListing 输出某个包按新旧排序后的完整版本列表。
func (p *Printer) PackageListing(pkg string, versions []VersionLine) {
	p.printf("\n包: %s\n", pkg)
	p.printf("  共 %d 个版本:\n", len(versions))
	for i, v := range versions {
		p.printf("    %d: %s (修改时间: %s)\n", i+1, v.Name, v.ModTime.Format(TimestampLayout))
	}
}

// Keeping 输出保留的版本。
func (p *Printer) Keeping(version string) {
	p.printf("  保留: %s\n", version)
}

// Deleting 输出正在删除或将被删除的路径。
func (p *Printer) Deleting(path string, dryRun bool) {
	if dryRun {
		p.printf("  将删除: %s\n", path)
		return
	}
	p.printf("  删除: %s\n", path)
}

// PackageSummary 输出包缓存清理汇总。
func (p *Printer) PackageSummary(s PackageSummary) {
	p.printf("\n汇总:\n")
	p.printf("  处理的包: %d\n", s.Packages)
	p.printf("  保留的版本: %d\n", s.Kept)
	if s.DryRun {
		p.printf("  将删除的版本: %d\n", s.Deleted)
		return
	}
	p.printf("  已删除的版本: %d\n", s.Deleted)
}

// CheckpointHeader 输出 checkpoints 清理的起始行。
func (p *Printer) CheckpointHeader(threshold time.Duration) {
	p.printf("\n清理修改时间早于 %s 的 Roo checkpoints...\n", humanAge(threshold))
}

// SkipRoot 输出因目录不存在而跳过的任务根目录。
func (p *Printer) SkipRoot(root string) {
	p.printf("  跳过 %s（路径不存在）\n", root)
}

// KeepingTask 输出未超过保留期的任务目录。
func (p *Printer) KeepingTask(path string) {
	p.printf("  保留 %s 的 checkpoints（未超过保留期）\n", path)
}

// DeletingCheckpoints 输出正在删除或将被删除的 checkpoints 目录。
func (p *Printer) DeletingCheckpoints(path string, dryRun bool) {
	if dryRun {
		p.printf("  将删除 checkpoints: %s\n", path)
		return
	}
	p.printf("  删除 checkpoints: %s\n", path)
}

// CheckpointSummary 输出 checkpoints 清理汇总。
func (p *Printer) CheckpointSummary(s CheckpointSummary) {
	p.printf("Roo checkpoints 汇总:\n")
	p.printf("  检查的任务目录: %d\n", s.Tasks)
	if s.DryRun {
		p.printf("  可删除的 checkpoints: %d\n", s.Checkpoints)
		return
	}
	p.printf("  已删除的 checkpoints: %d\n", s.Checkpoints)
}

// humanAge 将整天数的阈值显示为 "N 天"，其余情况退回 Duration 字符串。
func humanAge(d time.Duration) string {
	const day = 24 * time.Hour
	if d >= day && d%day == 0 {
		return fmt.Sprintf("%d 天", d/day)
	}
	return d.String()
}
