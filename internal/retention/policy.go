// Package retention 实现“每个包只保留最新 K 个版本”的策略，以及基于该策略
// 驱动 cache.Store 的包缓存清理流程。
package retention

import (
	"sort"

	"github.com/any-hub/cleanpkgcache/internal/cache"
)

// DefaultKeep 为每个包默认保留的版本数量。
const DefaultKeep = 2

// Policy 描述保留策略。
type Policy struct {
	Keep int
}

// DefaultPolicy 返回保留最新两个版本的策略。
func DefaultPolicy() Policy {
	return Policy{Keep: DefaultKeep}
}

// Rank 原地按 ModTime 从新到旧排序；时间相同时按版本名升序，保证结果确定。
func Rank(versions []cache.Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		a, b := versions[i], versions[j]
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}
		return a.Name() < b.Name()
	})
}

// Partition 将已排序的版本切分为保留集与删除集：前 keep 个保留，其余删除。
// 两个切片共享底层数组，互不重叠且合起来恰为输入。
func Partition(versions []cache.Version, keep int) (kept, deleted []cache.Version) {
	if keep < 0 {
		keep = 0
	}
	if keep > len(versions) {
		keep = len(versions)
	}
	return versions[:keep], versions[keep:]
}

// Apply 对 versions 排序并按策略切分。
func (p Policy) Apply(versions []cache.Version) (kept, deleted []cache.Version) {
	Rank(versions)
	return Partition(versions, p.Keep)
}
