package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// mustParse 解析 CLI 参数，失败时终止测试。
func mustParse(t *testing.T, args ...string) cliOptions {
	t.Helper()
	opts, err := parseCLIFlags(args)
	if err != nil {
		t.Fatalf("解析参数失败: %v", err)
	}
	return opts
}

// cacheFixture 构建 pkgA/{1.0,1.1,1.2} 与 pkgB/{2.0}，修改时间依次递增。
func cacheFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	versions := []struct {
		pkg, version string
		offset       time.Duration
	}{
		{"pkgA", "1.0", 100 * time.Second},
		{"pkgA", "1.1", 200 * time.Second},
		{"pkgA", "1.2", 300 * time.Second},
		{"pkgB", "2.0", 50 * time.Second},
	}
	for _, v := range versions {
		dir := filepath.Join(root, v.pkg, v.version)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("创建目录失败: %v", err)
		}
		ts := base.Add(v.offset)
		if err := os.Chtimes(dir, ts, ts); err != nil {
			t.Fatalf("设置时间失败: %v", err)
		}
	}
	return root
}

// useBufferWriters 在测试期间将 stdOut/stdErr 替换为内存缓冲区，便于断言 CLI 输出。
func useBufferWriters(t *testing.T) {
	t.Helper()

	prevOut, prevErr := stdOut, stdErr
	stdOut = &bytes.Buffer{}
	stdErr = &bytes.Buffer{}

	t.Cleanup(func() {
		stdOut = prevOut
		stdErr = prevErr
	})
}

// stdOutBuffer 返回 useBufferWriters 注入的 stdout 缓冲区。
func stdOutBuffer() *bytes.Buffer {
	buf, _ := stdOut.(*bytes.Buffer)
	return buf
}

// stdErrBuffer 返回 useBufferWriters 注入的 stderr 缓冲区。
func stdErrBuffer() *bytes.Buffer {
	buf, _ := stdErr.(*bytes.Buffer)
	return buf
}
