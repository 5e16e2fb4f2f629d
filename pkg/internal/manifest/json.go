package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yeisme/docshelf/pkg/internal/model"
	nlog "github.com/yeisme/docshelf/pkg/log"
)

// JSONStore 把清单保存为单个格式化的 JSON 数组文件，每次修改整体重写.
type JSONStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewJSONStore 创建 JSON 清单，父目录不存在时自动创建.
func NewJSONStore(path string) (*JSONStore, error) {
	if path == "" {
		return nil, errors.New("manifest path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create manifest dir: %w", err)
	}

	return &JSONStore{path: path, now: time.Now}, nil
}

// Path 返回清单文件路径.
func (s *JSONStore) Path() string {
	return s.path
}

// Load 实现 Store.
func (s *JSONStore) Load(ctx context.Context) ([]model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, _, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	if records == nil {
		records = []model.FileRecord{}
	}

	return records, nil
}

// Get 实现 Store.
func (s *JSONStore) Get(ctx context.Context, id string) (model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, _, err := s.read(ctx)
	if err != nil {
		return model.FileRecord{}, err
	}

	i := indexOf(records, id)
	if i < 0 {
		return model.FileRecord{}, ErrNotFound
	}

	return records[i], nil
}

// Append 实现 Store.
func (s *JSONStore) Append(ctx context.Context, rec model.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, corrupt, err := s.read(ctx)
	if err != nil {
		return err
	}

	if indexOf(records, rec.ID) >= 0 {
		return ErrDuplicateID
	}

	if corrupt {
		s.quarantine(ctx)
	}

	return s.write(append(records, rec))
}

// Remove 实现 Store.
func (s *JSONStore) Remove(ctx context.Context, id string) (model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, _, err := s.read(ctx)
	if err != nil {
		return model.FileRecord{}, err
	}

	i := indexOf(records, id)
	if i < 0 {
		return model.FileRecord{}, ErrNotFound
	}

	removed := records[i]

	if err := s.write(slices.Delete(records, i, i+1)); err != nil {
		return model.FileRecord{}, err
	}

	return removed, nil
}

// Close 实现 Store.
func (s *JSONStore) Close() error {
	return nil
}

// read 读取清单；文件不存在视为空，内容无法解析时记录日志并返回 corrupt=true.
func (s *JSONStore) read(ctx context.Context) ([]model.FileRecord, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("read manifest: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, false, nil
	}

	var records []model.FileRecord
	if err := sonic.ConfigStd.Unmarshal(data, &records); err != nil {
		nlog.Ctx(ctx).Warn().Err(err).Str("path", s.path).Msg("manifest is corrupt, treating as empty")

		return nil, true, nil
	}

	return records, false, nil
}

// quarantine 在覆盖损坏的清单前把它移到一旁保留.
func (s *JSONStore) quarantine(ctx context.Context) {
	dst := s.path + ".corrupt-" + strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := os.Rename(s.path, dst); err != nil {
		nlog.Ctx(ctx).Error().Err(err).Str("path", s.path).Msg("failed to quarantine corrupt manifest")

		return
	}

	nlog.Ctx(ctx).Warn().Str("path", s.path).Str("quarantined", dst).Msg("corrupt manifest moved aside")
}

// write 原子地整体重写清单：临时文件 -> fsync -> rename.
func (s *JSONStore) write(records []model.FileRecord) error {
	if records == nil {
		records = []model.FileRecord{}
	}

	data, err := sonic.ConfigStd.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create manifest temp: %w", err)
	}

	tmpPath := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return fmt.Errorf("write manifest: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return fmt.Errorf("fsync manifest: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("close manifest temp: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("replace manifest: %w", err)
	}

	return nil
}

func indexOf(records []model.FileRecord, id string) int {
	return slices.IndexFunc(records, func(r model.FileRecord) bool { return r.ID == id })
}
