// Package disk 管理上传根目录中的物理文件.
//
// 目录结构是扁平的：所有文件直接位于根目录下，任何包含路径分隔符或解析后离开根目录的名字都会被拒绝.
// 写入遵循 临时文件 -> 流式写入并计算 xxhash -> fsync -> 原子链接/重命名 的流程，失败时清理临时文件.
package disk

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// TempPrefix 写入过程中临时文件的前缀，对账时会被忽略.
const TempPrefix = ".upload-"

var (
	// ErrNotFound 文件不存在.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidName 名字为空、包含分隔符或会离开根目录.
	ErrInvalidName = errors.New("invalid file name")
	// ErrExists 目标文件已存在，存储不会覆盖已有文件.
	ErrExists = errors.New("file already exists")
	// ErrTooLarge 写入的字节数超过上限.
	ErrTooLarge = errors.New("file exceeds size limit")
)

// Store 上传根目录.
type Store struct {
	root string
}

// SaveResult 写入结果.
type SaveResult struct {
	Name     string
	Size     int64
	Checksum string
}

// Entry 目录扫描得到的文件.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// New 创建 Store，根目录不存在时自动创建.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("upload root is empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload root %s: %w", root, err)
	}

	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create upload root %s: %w", abs, err)
	}

	return &Store{root: abs}, nil
}

// Root 返回根目录的绝对路径.
func (s *Store) Root() string {
	return s.root
}

// Resolve 把名字解析为根目录下的绝对路径.
func (s *Store) Resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." {
		return "", ErrInvalidName
	}

	if strings.ContainsAny(name, `/\`) || strings.IndexByte(name, 0) >= 0 {
		return "", ErrInvalidName
	}

	full := filepath.Join(s.root, name)

	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == "." || rel != filepath.Base(rel) || strings.HasPrefix(rel, "..") {
		return "", ErrInvalidName
	}

	return full, nil
}

// Save 将 r 的内容写入 name，最多写入 limit 字节（limit <= 0 表示不限制）.
// 目标已存在时返回 ErrExists.
func (s *Store) Save(r io.Reader, name string, limit int64) (*SaveResult, error) {
	full, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}

	if _, err := os.Lstat(full); err == nil {
		return nil, ErrExists
	}

	tmp, err := os.CreateTemp(s.root, TempPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}

	hasher := xxhash.New()

	size, err := io.Copy(tmp, io.TeeReader(src, hasher))
	if err != nil {
		cleanup()

		return nil, fmt.Errorf("write data: %w", err)
	}

	if limit > 0 && size > limit {
		cleanup()

		return nil, ErrTooLarge
	}

	// fsync 保证数据落盘后才对外可见
	if err := tmp.Sync(); err != nil {
		cleanup()

		return nil, fmt.Errorf("fsync: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0o640); err != nil {
		_ = os.Remove(tmpPath)

		return nil, fmt.Errorf("chmod: %w", err)
	}

	if err := commit(tmpPath, full); err != nil {
		_ = os.Remove(tmpPath)

		return nil, err
	}

	return &SaveResult{
		Name:     name,
		Size:     size,
		Checksum: strconv.FormatUint(hasher.Sum64(), 16),
	}, nil
}

// commit 以不覆盖的方式把临时文件发布为目标文件.
// 优先使用硬链接（目标存在时原子失败），文件系统不支持时退回到 rename.
func commit(tmpPath, full string) error {
	err := os.Link(tmpPath, full)
	if err == nil {
		_ = os.Remove(tmpPath)

		return nil
	}

	if errors.Is(err, fs.ErrExist) {
		return ErrExists
	}

	if _, statErr := os.Lstat(full); statErr == nil {
		return ErrExists
	}

	if err := os.Rename(tmpPath, full); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}

	return nil
}

// Open 打开文件用于读取，调用方负责关闭.
func (s *Store) Open(name string) (*os.File, fs.FileInfo, error) {
	full, err := s.Resolve(name)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrNotFound
		}

		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, nil, fmt.Errorf("stat %s: %w", name, err)
	}

	if !info.Mode().IsRegular() {
		_ = f.Close()

		return nil, nil, ErrNotFound
	}

	return f, info, nil
}

// Stat 返回文件信息.
func (s *Store) Stat(name string) (fs.FileInfo, error) {
	full, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("stat %s: %w", name, err)
	}

	if !info.Mode().IsRegular() {
		return nil, ErrNotFound
	}

	return info, nil
}

// Exists 判断文件是否存在.
func (s *Store) Exists(name string) bool {
	_, err := s.Stat(name)

	return err == nil
}

// Remove 删除文件，文件已不存在时返回 nil.
func (s *Store) Remove(name string) error {
	full, err := s.Resolve(name)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}

	return nil
}

// List 按名字排序列出根目录下的普通文件，忽略子目录和写入中的临时文件.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read upload root: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))

	for _, de := range dirEntries {
		if !de.Type().IsRegular() || strings.HasPrefix(de.Name(), TempPrefix) {
			continue
		}

		info, err := de.Info()
		if err != nil {
			// 扫描期间被删除
			continue
		}

		entries = append(entries, Entry{Name: de.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return entries, nil
}

// Ping 检查根目录仍然可用.
func (s *Store) Ping() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("upload root unavailable: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("upload root %s is not a directory", s.root)
	}

	return nil
}
