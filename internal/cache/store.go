package cache

import (
	"context"
	"errors"
	"time"
)

// Store 负责读取和删除包缓存目录。磁盘布局遵循：
//
//	<root>/<Package>/<Version>/...    # 每个版本一个目录
//
// 版本的新旧完全由目录的 ModTime 决定。
type Store interface {
	// Root 返回缓存根目录的绝对路径。
	Root() string

	// Packages 枚举根目录下所有至少包含一个版本目录的包，按包名排序。
	// 任何目录读取或元数据读取失败都会直接返回错误。
	Packages(ctx context.Context) ([]Package, error)

	// Remove 递归删除 Locator 指向的版本目录。
	Remove(ctx context.Context, locator Locator) error
}

// Locator 唯一定位一个版本目录（包名 + 版本名）。
type Locator struct {
	Package string
	Version string
}

// Version 表示一次枚举得到的版本快照，读取后不再变化。
type Version struct {
	Locator Locator   `json:"locator"`
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
}

// Name 返回版本目录名。
func (v Version) Name() string {
	return v.Locator.Version
}

// Package 聚合同一包名下的全部版本，顺序为目录枚举顺序。
type Package struct {
	Name     string
	Versions []Version
}

var (
	// ErrRootNotFound 表示缓存根目录不存在。
	ErrRootNotFound = errors.New("cache root does not exist")
	// ErrRootNotDirectory 表示缓存根路径存在但不是目录。
	ErrRootNotDirectory = errors.New("cache root is not a directory")
	// ErrInvalidLocator 表示 Locator 缺字段或试图越出根目录。
	ErrInvalidLocator = errors.New("invalid cache locator")
)
