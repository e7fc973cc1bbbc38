package logging

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NewRunID 为一次 CLI 调用生成唯一标识，串联同一次运行中的全部日志。
func NewRunID() string {
	return uuid.NewString()
}

// BaseFields 构建 action + 目标路径等基础字段，便于不同入口复用。
func BaseFields(action, path string) logrus.Fields {
	return logrus.Fields{
		"action": action,
		"path":   path,
	}
}

// VersionFields 提供包/版本维度的字段，供清理日志复用。
func VersionFields(pkg, version, path string, dryRun bool) logrus.Fields {
	return logrus.Fields{
		"package": pkg,
		"version": version,
		"path":    path,
		"dry_run": dryRun,
	}
}

// TaskFields 提供任务目录维度的字段，供 checkpoints 清理日志复用。
func TaskFields(root, task, path string, dryRun bool) logrus.Fields {
	return logrus.Fields{
		"root":    root,
		"task":    task,
		"path":    path,
		"dry_run": dryRun,
	}
}
