package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFamily 是未指定字体时使用的内置粗体。
const DefaultFamily = "GoBold"

var builtins = map[string][]byte{
	"gobold":    gobold.TTF,
	"goregular": goregular.TTF,
}

// Load 返回字体文件的字节数据，src 可写为 "builtin:gobold" 或文件路径（相对路径基于 baseDir）。
func Load(src, baseDir string) ([]byte, error) {
	if name, ok := cutBuiltin(src); ok {
		data, found := builtins[strings.ToLower(name)]
		if !found {
			return nil, fmt.Errorf("找不到内置字体 %s", src)
		}
		return data, nil
	}
	path := src
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

func cutBuiltin(src string) (string, bool) {
	for _, prefix := range []string{"builtin:", "built-in:"} {
		if name, ok := strings.CutPrefix(src, prefix); ok {
			return name, true
		}
	}
	return "", false
}

// Registry 按字体族名保存字体数据，可并发读取。
type Registry struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewRegistry 创建已注册内置 GoBold/GoRegular 的字体表。
func NewRegistry() *Registry {
	return &Registry{data: map[string][]byte{
		DefaultFamily: gobold.TTF,
		"GoRegular":   goregular.TTF,
	}}
}

// Register 以 family 为名注册字体数据，同名覆盖。
func (r *Registry) Register(family string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[family] = data
}

// RegisterSource 按 Load 的规则读取 src 后注册。
func (r *Registry) RegisterSource(family, src, baseDir string) error {
	if family == "" {
		return fmt.Errorf("字体族名不能为空")
	}
	data, err := Load(src, baseDir)
	if err != nil {
		return err
	}
	r.Register(family, data)
	return nil
}

// Lookup 返回 family 对应的字体数据；family 为空时返回默认字体。
func (r *Registry) Lookup(family string) ([]byte, bool) {
	if family == "" {
		family = DefaultFamily
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.data[family]
	return data, ok
}

// Families 返回已注册的字体族名（排序后）。
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.data))
	for name := range r.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
