package checkpoint

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Source 描述一个已知的任务历史安装位置，TaskDir 相对于用户配置目录。
type Source struct {
	Key         string
	Description string
	TaskDir     []string
}

// Root 返回 Source 在 configDir 下的任务根目录。
func (s Source) Root(configDir string) string {
	return filepath.Join(append([]string{configDir}, s.TaskDir...)...)
}

var globalSources = newSourceRegistry()

func init() {
	for _, key := range []string{"microsoftai.ms-roo-cline", "rooveterinaryinc.roo-cline"} {
		MustRegister(Source{
			Key:         key,
			Description: "Roo Code task history (VS Code global storage)",
			TaskDir:     []string{"Code", "User", "globalStorage", key, "tasks"},
		})
	}
}

type sourceRegistry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

func newSourceRegistry() *sourceRegistry {
	return &sourceRegistry{sources: make(map[string]Source)}
}

// Register 将 Source 加入全局注册表，重复键会返回错误。
func Register(src Source) error {
	return globalSources.register(src)
}

// MustRegister 在注册失败时 panic，适合 init() 中调用。
func MustRegister(src Source) {
	if err := Register(src); err != nil {
		panic(err)
	}
}

// Resolve 返回指定键的 Source。
func Resolve(key string) (Source, bool) {
	return globalSources.resolve(key)
}

// List 返回按键排序的 Source 列表。
func List() []Source {
	return globalSources.list()
}

// Keys 返回所有已注册 Source 的键值。
func Keys() []string {
	items := List()
	result := make([]string, len(items))
	for i, src := range items {
		result[i] = src.Key
	}
	return result
}

// DefaultRoots 展开全部已注册 Source 在 configDir 下的任务根目录。
func DefaultRoots(configDir string) []string {
	items := List()
	roots := make([]string, 0, len(items))
	for _, src := range items {
		roots = append(roots, src.Root(configDir))
	}
	return roots
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func (r *sourceRegistry) register(src Source) error {
	key := normalizeKey(src.Key)
	if key == "" {
		return fmt.Errorf("source key is required")
	}
	if len(src.TaskDir) == 0 {
		return fmt.Errorf("source %s requires a task directory", key)
	}
	src.Key = key

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[key]; exists {
		return fmt.Errorf("source %s already registered", key)
	}
	r.sources[key] = src
	return nil
}

func (r *sourceRegistry) resolve(key string) (Source, bool) {
	normalized := normalizeKey(key)
	if normalized == "" {
		return Source{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	src, ok := r.sources[normalized]
	return src, ok
}

func (r *sourceRegistry) list() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.sources) == 0 {
		return nil
	}

	keys := make([]string, 0, len(r.sources))
	for key := range r.sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]Source, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.sources[key])
	}
	return result
}
