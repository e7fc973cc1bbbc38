package config

import (
	"testing"

	"github.com/spf13/pflag"
)

// parseFlags 构造与 CLI 相同的 FlagSet 并解析 args，返回位置参数。
func parseFlags(t *testing.T, args ...string) (*pflag.FlagSet, []string) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("解析参数失败: %v", err)
	}
	return fs, fs.Args()
}
