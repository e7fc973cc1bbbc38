package retention

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/any-hub/cleanpkgcache/internal/cache"
	"github.com/any-hub/cleanpkgcache/internal/report"
)

func TestCleanerTwoPackageTree(t *testing.T) {
	root := twoPackageTree(t)
	buf := &bytes.Buffer{}

	summary, err := newTestCleaner(t, root, Options{Policy: DefaultPolicy()}, buf).Run(context.Background())
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	want := report.PackageSummary{Packages: 2, Kept: 3, Deleted: 1}
	if summary != want {
		t.Fatalf("expected %+v, got %+v", want, summary)
	}

	assertExists(t, filepath.Join(root, "pkgA", "1.2"))
	assertExists(t, filepath.Join(root, "pkgA", "1.1"))
	assertMissing(t, filepath.Join(root, "pkgA", "1.0"))
	assertExists(t, filepath.Join(root, "pkgB", "2.0"))

	if !strings.Contains(buf.String(), "删除: "+filepath.Join(root, "pkgA", "1.0")) {
		t.Fatalf("deletion should be reported: %s", buf.String())
	}
}

func TestCleanerDryRunDoesNotMutate(t *testing.T) {
	root := twoPackageTree(t)

	dryBuf := &bytes.Buffer{}
	drySummary, err := newTestCleaner(t, root, Options{Policy: DefaultPolicy(), DryRun: true}, dryBuf).Run(context.Background())
	if err != nil {
		t.Fatalf("dry run error: %v", err)
	}
	assertExists(t, filepath.Join(root, "pkgA", "1.0"))
	if !drySummary.DryRun || drySummary.Deleted != 1 {
		t.Fatalf("dry run should report 1 candidate, got %+v", drySummary)
	}
	if !strings.Contains(dryBuf.String(), "将删除: "+filepath.Join(root, "pkgA", "1.0")) {
		t.Fatalf("dry run should list candidate: %s", dryBuf.String())
	}

	liveSummary, err := newTestCleaner(t, root, Options{Policy: DefaultPolicy()}, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("live run error: %v", err)
	}
	if liveSummary.Deleted != drySummary.Deleted || liveSummary.Kept != drySummary.Kept || liveSummary.Packages != drySummary.Packages {
		t.Fatalf("live run should match preview: dry=%+v live=%+v", drySummary, liveSummary)
	}
	assertMissing(t, filepath.Join(root, "pkgA", "1.0"))
}

func TestCleanerIsIdempotent(t *testing.T) {
	root := t.TempDir()
	base := time.Now().Add(-24 * time.Hour).Truncate(time.Second)
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		mkVersion(t, root, "five", name, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := newTestCleaner(t, root, Options{Policy: DefaultPolicy()}, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("first run error: %v", err)
	}
	if first.Kept != 2 || first.Deleted != 3 {
		t.Fatalf("five versions: expected keep 2 delete 3, got %+v", first)
	}
	assertExists(t, filepath.Join(root, "five", "e"))
	assertExists(t, filepath.Join(root, "five", "d"))

	second, err := newTestCleaner(t, root, Options{Policy: DefaultPolicy()}, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if second.Deleted != 0 || second.Kept != 2 {
		t.Fatalf("second run should delete nothing, got %+v", second)
	}
}

func TestCleanerVerboseListing(t *testing.T) {
	root := twoPackageTree(t)
	buf := &bytes.Buffer{}

	if _, err := newTestCleaner(t, root, Options{Policy: DefaultPolicy(), DryRun: true, Verbose: true}, buf).Run(context.Background()); err != nil {
		t.Fatalf("run error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"包: pkgA", "共 3 个版本", "1: 1.2", "2: 1.1", "3: 1.0", "保留: 1.2", "保留: 1.1", "包: pkgB", "保留: 2.0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("verbose output missing %q:\n%s", want, out)
		}
	}
}

func TestCleanerCustomKeep(t *testing.T) {
	root := twoPackageTree(t)
	summary, err := newTestCleaner(t, root, Options{Policy: Policy{Keep: 1}}, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if summary.Kept != 2 || summary.Deleted != 2 {
		t.Fatalf("keep=1 should keep 2 delete 2, got %+v", summary)
	}
	assertMissing(t, filepath.Join(root, "pkgA", "1.1"))
}

func TestCleanerStopsOnRemoveFailure(t *testing.T) {
	boom := errors.New("boom")
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &stubStore{
		packages: []cache.Package{{
			Name: "pkg",
			Versions: []cache.Version{
				{Locator: cache.Locator{Package: "pkg", Version: "1"}, ModTime: ts},
				{Locator: cache.Locator{Package: "pkg", Version: "2"}, ModTime: ts.Add(time.Hour)},
				{Locator: cache.Locator{Package: "pkg", Version: "3"}, ModTime: ts.Add(2 * time.Hour)},
				{Locator: cache.Locator{Package: "pkg", Version: "0"}, ModTime: ts.Add(-time.Hour)},
			},
		}},
		removeErr: boom,
	}
	buf := &bytes.Buffer{}

	_, err := NewCleaner(store, Options{Policy: DefaultPolicy()}, report.NewPrinter(buf), nil).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected remove error, got %v", err)
	}
	if store.removeCalls != 1 {
		t.Fatalf("run should abort after first failure, got %d removals", store.removeCalls)
	}
	if strings.Contains(buf.String(), "汇总") {
		t.Fatalf("summary must not be printed after a fatal error: %s", buf.String())
	}
}

func TestCleanerPropagatesEnumerationError(t *testing.T) {
	boom := errors.New("read failed")
	_, err := NewCleaner(&stubStore{packagesErr: boom}, Options{Policy: DefaultPolicy()}, nil, nil).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected enumeration error, got %v", err)
	}
}

type stubStore struct {
	packages    []cache.Package
	packagesErr error
	removeErr   error
	removeCalls int
}

func (s *stubStore) Root() string { return "/stub" }

func (s *stubStore) Packages(context.Context) ([]cache.Package, error) {
	return s.packages, s.packagesErr
}

func (s *stubStore) Remove(context.Context, cache.Locator) error {
	s.removeCalls++
	return s.removeErr
}

// twoPackageTree builds pkgA/{1.0,1.1,1.2} and pkgB/{2.0} with increasing mod times.
func twoPackageTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	mkVersion(t, root, "pkgA", "1.0", base.Add(100*time.Second))
	mkVersion(t, root, "pkgA", "1.1", base.Add(200*time.Second))
	mkVersion(t, root, "pkgA", "1.2", base.Add(300*time.Second))
	mkVersion(t, root, "pkgB", "2.0", base.Add(50*time.Second))
	return root
}

func newTestCleaner(t *testing.T, root string, opts Options, buf *bytes.Buffer) *Cleaner {
	t.Helper()
	store, err := cache.NewStore(root)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	var printer *report.Printer
	if buf != nil {
		printer = report.NewPrinter(buf)
	}
	return NewCleaner(store, opts, printer, nil)
}

func mkVersion(t *testing.T, root, pkg, version string, modTime time.Time) {
	t.Helper()
	dir := filepath.Join(root, pkg, version)
	if err := os.MkdirAll(filepath.Join(dir, "lib"), 0o755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}
	if err := os.Chtimes(dir, modTime, modTime); err != nil {
		t.Fatalf("chtimes error: %v", err)
	}
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func assertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected %s to be removed, got %v", path, err)
	}
}
