package manifest_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/internal/manifest"
	"github.com/yeisme/docshelf/pkg/internal/model"
	"github.com/yeisme/docshelf/pkg/internal/storage/db"
)

func record(i int) model.FileRecord {
	return model.FileRecord{
		ID:           fmt.Sprintf("01HZZZZZZZZZZZZZZZZZZZZZ%02d", i),
		OriginalName: fmt.Sprintf("file %d.pdf", i),
		StoredName:   fmt.Sprintf("file_%d-1700000000000-%d.pdf", i, i),
		MimeType:     "application/pdf",
		Size:         int64(i * 10),
		UploadedAt:   time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC),
	}
}

func newJSONStore(t *testing.T) (*manifest.JSONStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "files-list.json")

	s, err := manifest.NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}

	return s, path
}

func newDBStore(t *testing.T) manifest.Store {
	t.Helper()

	ctx := context.Background()
	cfg := configs.DBConfig{Type: configs.SQLite, Database: filepath.Join(t.TempDir(), "manifest.db"), MaxIdleConns: 1}

	client, err := db.New(ctx, cfg, db.Options{})
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })

	s, err := manifest.NewDBStore(ctx, client.DB)
	if err != nil {
		t.Fatalf("NewDBStore() error = %v", err)
	}

	return s
}

// backends 对两种后端执行相同的行为测试.
func backends(t *testing.T) map[string]manifest.Store {
	js, _ := newJSONStore(t)

	return map[string]manifest.Store{
		"json": js,
		"db":   newDBStore(t),
	}
}

// TestRoundTrip 测试追加后按插入顺序读取.
func TestRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			empty, err := s.Load(ctx)
			if err != nil || empty == nil || len(empty) != 0 {
				t.Fatalf("Load() on empty = %v, %v; want [] and nil", empty, err)
			}

			for i := 1; i <= 5; i++ {
				if err := s.Append(ctx, record(i)); err != nil {
					t.Fatalf("Append(%d) error = %v", i, err)
				}
			}

			got, err := s.Load(ctx)
			if err != nil {
				t.Fatal(err)
			}

			if len(got) != 5 {
				t.Fatalf("Load() returned %d records, want 5", len(got))
			}

			for i, r := range got {
				want := record(i + 1)
				if r.ID != want.ID || r.StoredName != want.StoredName || r.Size != want.Size ||
					r.OriginalName != want.OriginalName || !r.UploadedAt.Equal(want.UploadedAt) {
					t.Errorf("record %d = %+v, want %+v", i, r, want)
				}
			}
		})
	}
}

// TestDuplicateAndRemove 测试重复 id 被拒绝以及删除语义.
func TestDuplicateAndRemove(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Append(ctx, record(1)); err != nil {
				t.Fatal(err)
			}

			if err := s.Append(ctx, record(2)); err != nil {
				t.Fatal(err)
			}

			if err := s.Append(ctx, record(1)); !errors.Is(err, manifest.ErrDuplicateID) {
				t.Errorf("duplicate Append() error = %v, want ErrDuplicateID", err)
			}

			removed, err := s.Remove(ctx, record(1).ID)
			if err != nil {
				t.Fatalf("Remove() error = %v", err)
			}

			if removed.StoredName != record(1).StoredName {
				t.Errorf("removed = %+v", removed)
			}

			if _, err := s.Remove(ctx, record(1).ID); !errors.Is(err, manifest.ErrNotFound) {
				t.Errorf("second Remove() error = %v, want ErrNotFound", err)
			}

			if _, err := s.Get(ctx, record(1).ID); !errors.Is(err, manifest.ErrNotFound) {
				t.Errorf("Get() error = %v, want ErrNotFound", err)
			}

			left, _ := s.Load(ctx)
			if len(left) != 1 || left[0].ID != record(2).ID {
				t.Errorf("Load() after remove = %+v", left)
			}
		})
	}
}

// TestConcurrentAppend 测试并发追加不会丢失记录.
func TestConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	s, _ := newJSONStore(t)

	const n = 50

	var wg sync.WaitGroup

	for i := range n {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			if err := s.Append(ctx, record(i)); err != nil {
				t.Errorf("Append(%d) error = %v", i, err)
			}
		}(i)
	}

	wg.Wait()

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != n {
		t.Errorf("Load() = %d records, want %d", len(got), n)
	}
}

// TestJSONFormat 测试文件是格式化的 JSON 数组，删除到空时写出 [].
func TestJSONFormat(t *testing.T) {
	ctx := context.Background()
	s, path := newJSONStore(t)

	if err := s.Append(ctx, record(1)); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	text := string(data)
	if !strings.HasPrefix(text, "[\n  {") || !strings.Contains(text, `"storedName": "file_1-1700000000000-1.pdf"`) {
		t.Errorf("unexpected manifest layout:\n%s", text)
	}

	if _, err := s.Remove(ctx, record(1).ID); err != nil {
		t.Fatal(err)
	}

	data, _ = os.ReadFile(path)
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("empty manifest = %q, want []", data)
	}
}

// TestJSONCorrupt 测试损坏的清单被视为空，并在下一次写入前被隔离.
func TestJSONCorrupt(t *testing.T) {
	ctx := context.Background()
	s, path := newJSONStore(t)

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("Load() on corrupt = %v, %v; want empty and nil", got, err)
	}

	if err := s.Append(ctx, record(1)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	matches, _ := filepath.Glob(path + ".corrupt-*")
	if len(matches) != 1 {
		t.Fatalf("expected one quarantined manifest, got %v", matches)
	}

	kept, _ := os.ReadFile(matches[0])
	if string(kept) != "{not json" {
		t.Errorf("quarantined content = %q", kept)
	}

	got, _ = s.Load(ctx)
	if len(got) != 1 {
		t.Errorf("Load() after recovery = %d records, want 1", len(got))
	}
}
