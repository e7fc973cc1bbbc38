package config

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// Validate 针对语义级别做进一步校验，防止非法参数进入删除流程。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	if strings.TrimSpace(c.CachePath) == "" {
		return newFieldError("path", "不能为空")
	}
	if c.Keep < 1 {
		return newFieldError(flagField("keep", -1), "必须大于 0")
	}

	if c.Checkpoint.MaxAge.DurationValue() <= 0 {
		return newFieldError(flagField("checkpoint-age", -1), "必须大于 0")
	}
	for i, root := range c.Checkpoint.Roots {
		if strings.ContainsRune(root, 0) {
			return newFieldError(flagField("checkpoint-root", i), "包含非法字符")
		}
	}

	if _, err := logrus.ParseLevel(c.Log.LogLevel); err != nil {
		return newFieldError(flagField("log-level", -1), "仅支持 trace/debug/info/warn/error/fatal/panic")
	}
	if c.Log.LogMaxSize < 0 {
		return newFieldError(flagField("log-max-size", -1), "不能为负数")
	}
	if c.Log.LogMaxBackups < 0 {
		return newFieldError(flagField("log-max-backups", -1), "不能为负数")
	}

	return nil
}
