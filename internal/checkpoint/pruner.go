// Package checkpoint 清理任务历史目录中过期任务的 checkpoints 子目录。
//
// 每个任务根目录下的一级子目录视为一个任务；任务目录的修改时间超过保留期后，
// 其 checkpoints 子目录整体删除，任务目录本身保留。
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/cleanpkgcache/internal/logging"
	"github.com/any-hub/cleanpkgcache/internal/report"
)

const (
	// DefaultAge 约等于两个月。
	DefaultAge = 60 * 24 * time.Hour
	// CheckpointsDir 是任务目录下被删除的子目录名。
	CheckpointsDir = "checkpoints"
)

// Task 表示一次枚举得到的任务目录。
type Task struct {
	Name    string
	Path    string
	ModTime time.Time
}

// Age 计算 now 与 modTime 之差；修改时间在未来时视为 0。
func Age(now, modTime time.Time) time.Duration {
	age := now.Sub(modTime)
	if age < 0 {
		return 0
	}
	return age
}

// Eligible 报告任务是否已超过保留期：恰好等于阈值的任务仍然保留。
func Eligible(age, threshold time.Duration) bool {
	return age > threshold
}

// Options 控制一次 checkpoints 清理。
type Options struct {
	Roots     []string
	Threshold time.Duration
	DryRun    bool
	Verbose   bool
}

// Pruner 依次扫描 Roots，删除过期任务的 checkpoints 目录。
type Pruner struct {
	opts    Options
	now     func() time.Time
	printer *report.Printer
	logger  logrus.FieldLogger
}

// NewPruner 构造 Pruner，默认使用 time.Now 作为时钟。
func NewPruner(opts Options, printer *report.Printer, logger logrus.FieldLogger) *Pruner {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultAge
	}
	if printer == nil {
		printer = report.NewPrinter(nil)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pruner{
		opts:    opts,
		now:     time.Now,
		printer: printer,
		logger:  logger,
	}
}

// WithClock 替换时钟，便于测试阈值边界。
func (p *Pruner) WithClock(now func() time.Time) *Pruner {
	if now != nil {
		p.now = now
	}
	return p
}

// Run 执行清理并返回汇总。不存在的根目录被跳过；其余读取或删除失败立即中止。
func (p *Pruner) Run(ctx context.Context) (report.CheckpointSummary, error) {
	summary := report.CheckpointSummary{DryRun: p.opts.DryRun}
	now := p.now()

	p.printer.CheckpointHeader(p.opts.Threshold)

	for _, root := range p.opts.Roots {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if _, err := os.Stat(root); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if p.opts.Verbose {
					p.printer.SkipRoot(root)
				}
				p.logger.WithFields(logging.BaseFields("skip_root", root)).Debug("任务根目录不存在")
				continue
			}
			return summary, fmt.Errorf("stat task directory %s: %w", root, err)
		}

		tasks, err := listTasks(root)
		if err != nil {
			return summary, err
		}

		for _, task := range tasks {
			summary.Tasks++

			if !Eligible(Age(now, task.ModTime), p.opts.Threshold) {
				if p.opts.Verbose {
					p.printer.KeepingTask(task.Path)
				}
				continue
			}

			target := filepath.Join(task.Path, CheckpointsDir)
			present, err := isDirectory(target)
			if err != nil {
				return summary, err
			}
			if !present {
				continue
			}

			p.printer.DeletingCheckpoints(target, p.opts.DryRun)
			entry := p.logger.WithFields(logging.TaskFields(root, task.Name, target, p.opts.DryRun))
			if !p.opts.DryRun {
				if err := os.RemoveAll(target); err != nil {
					entry.WithError(err).Error("删除 checkpoints 目录失败")
					return summary, fmt.Errorf("delete checkpoints directory %s: %w", target, err)
				}
				entry.Info("已删除 checkpoints 目录")
			} else {
				entry.Debug("预览删除 checkpoints 目录")
			}
			summary.Checkpoints++
		}
	}

	p.printer.CheckpointSummary(summary)
	p.logger.WithFields(summary.Fields()).Info("checkpoints 清理完成")
	return summary, nil
}

// listTasks 枚举 root 下的任务目录并读取 ModTime。
func listTasks(root string) ([]Task, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read task directory %s: %w", root, err)
	}

	tasks := make([]Task, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if !entry.IsDir() {
			if entry.Type()&fs.ModeSymlink == 0 {
				continue
			}
			if ok, _ := isDirectory(path); !ok {
				continue
			}
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("read metadata for task %s: %w", path, err)
		}
		tasks = append(tasks, Task{
			Name:    entry.Name(),
			Path:    path,
			ModTime: info.ModTime(),
		})
	}
	return tasks, nil
}

// isDirectory 报告 path 是否为目录；不存在时返回 false 且无错误。
func isDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.IsDir(), nil
}
