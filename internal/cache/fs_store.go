package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// NewStore 以 root 为根目录构建只读枚举 + 删除能力的缓存视图，不会创建目录。
func NewStore(root string) (Store, error) {
	if root == "" {
		return nil, errors.New("cache root required")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve cache root %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, abs)
		}
		return nil, fmt.Errorf("stat cache root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDirectory, abs)
	}

	return &fileStore{basePath: abs}, nil
}

// fileStore 直接基于文件系统实现 Store，假定运行期间独占访问根目录。
type fileStore struct {
	basePath string
}

func (s *fileStore) Root() string {
	return s.basePath
}

func (s *fileStore) Packages(ctx context.Context) ([]Package, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("read cache directory %s: %w", s.basePath, err)
	}

	var packages []Package
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if !displayableName(name) {
			continue
		}
		pkgPath := filepath.Join(s.basePath, name)
		if !isDir(pkgPath, entry) {
			continue
		}

		versions, err := s.versions(name, pkgPath)
		if err != nil {
			return nil, err
		}
		if len(versions) == 0 {
			continue
		}
		packages = append(packages, Package{Name: name, Versions: versions})
	}

	sort.Slice(packages, func(i, j int) bool {
		return packages[i].Name < packages[j].Name
	})
	return packages, nil
}

// versions 枚举单个包目录下的版本目录并读取 ModTime。
func (s *fileStore) versions(pkg, pkgPath string) ([]Version, error) {
	entries, err := os.ReadDir(pkgPath)
	if err != nil {
		return nil, fmt.Errorf("read package directory %s: %w", pkgPath, err)
	}

	versions := make([]Version, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !displayableName(name) {
			continue
		}
		versionPath := filepath.Join(pkgPath, name)
		if !isDir(versionPath, entry) {
			continue
		}

		info, err := os.Stat(versionPath)
		if err != nil {
			return nil, fmt.Errorf("read metadata for %s: %w", versionPath, err)
		}

		versions = append(versions, Version{
			Locator: Locator{Package: pkg, Version: name},
			Path:    versionPath,
			ModTime: info.ModTime(),
		})
	}
	return versions, nil
}

func (s *fileStore) Remove(ctx context.Context, locator Locator) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.path(locator)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("delete directory %s: %w", target, err)
	}
	return nil
}

func (s *fileStore) path(locator Locator) (string, error) {
	for _, segment := range []string{locator.Package, locator.Version} {
		if segment == "" || segment == "." || segment == ".." || strings.ContainsAny(segment, `/\`) {
			return "", fmt.Errorf("%w: %s/%s", ErrInvalidLocator, locator.Package, locator.Version)
		}
	}

	target := filepath.Join(s.basePath, locator.Package, locator.Version)
	if !strings.HasPrefix(target, s.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidLocator, target)
	}
	return target, nil
}

// displayableName 过滤空名称以及无法按 UTF-8 解码的目录名。
func displayableName(name string) bool {
	return name != "" && utf8.ValidString(name)
}

// isDir 与 stat 语义一致：指向目录的符号链接也视为目录，无法读取时视为非目录。
func isDir(path string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
