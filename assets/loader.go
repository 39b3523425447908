// Package assets 读取 logo、字体等外部资源。
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrMissing 表示资源不存在。调用方可用 errors.Is 判断后降级处理。
var ErrMissing = errors.New("资源不存在")

// Loader 按路径提供资源字节。
type Loader interface {
	Exists(path string) bool
	ReadBytes(path string) ([]byte, error)
}

// DirLoader 以 Root 为根目录读取本地文件；绝对路径原样使用。
type DirLoader struct {
	Root string
}

// NewDirLoader 创建以 root 为根目录的加载器。
func NewDirLoader(root string) *DirLoader { return &DirLoader{Root: root} }

func (l *DirLoader) resolve(path string) string {
	if filepath.IsAbs(path) || l.Root == "" {
		return path
	}
	return filepath.Join(l.Root, path)
}

// Exists 报告资源是否存在且为普通文件。
func (l *DirLoader) Exists(path string) bool {
	info, err := os.Stat(l.resolve(path))
	return err == nil && info.Mode().IsRegular()
}

// ReadBytes 读取资源全部内容；文件不存在时返回包装了 ErrMissing 的错误。
func (l *DirLoader) ReadBytes(path string) ([]byte, error) {
	full := l.resolve(path)
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", full, ErrMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("读取资源 %s 失败: %w", full, err)
	}
	return data, nil
}

// FSLoader 从任意 fs.FS（例如 embed.FS 或 fstest.MapFS）读取资源。
type FSLoader struct {
	FS fs.FS
}

// Exists 报告资源是否存在。
func (l FSLoader) Exists(path string) bool {
	info, err := fs.Stat(l.FS, path)
	return err == nil && !info.IsDir()
}

// ReadBytes 读取资源全部内容。
func (l FSLoader) ReadBytes(path string) ([]byte, error) {
	data, err := fs.ReadFile(l.FS, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("读取资源 %s 失败: %w", path, err)
	}
	return data, nil
}
