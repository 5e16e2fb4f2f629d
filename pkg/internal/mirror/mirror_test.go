package mirror_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/internal/mirror"
	"github.com/yeisme/docshelf/pkg/internal/model"
	"github.com/yeisme/docshelf/pkg/internal/storage/disk"
	"github.com/yeisme/docshelf/pkg/internal/storage/mq"
	nlog "github.com/yeisme/docshelf/pkg/log"
	"github.com/yeisme/docshelf/pkg/queue"
)

type putCall struct {
	key, path, contentType string
}

type fakeStore struct {
	mu      sync.Mutex
	puts    []putCall
	removes []string
	failPut bool
	changed chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{changed: make(chan struct{}, 16)}
}

func (f *fakeStore) PutFile(_ context.Context, key, path, contentType string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failPut {
		return 0, errors.New("bucket unavailable")
	}

	f.puts = append(f.puts, putCall{key, path, contentType})
	f.changed <- struct{}{}

	return 1, nil
}

func (f *fakeStore) RemoveFile(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.removes = append(f.removes, key)
	f.changed <- struct{}{}

	return nil
}

func newMirror(t *testing.T) (*mirror.Mirror, *fakeStore, *disk.Store) {
	t.Helper()
	nlog.Use(zerolog.Nop())

	d, err := disk.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	store := newFakeStore()

	return mirror.New(store, d, configs.MirrorConfig{Prefix: "uploads/"}), store, d
}

func writeFile(t *testing.T, d *disk.Store, name string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(d.Root(), name), []byte("%PDF-1.4"), 0o600); err != nil {
		t.Fatal(err)
	}
}

// TestPutFile 测试对象键、路径与内容类型.
func TestPutFile(t *testing.T) {
	m, store, d := newMirror(t)
	writeFile(t, d, "report-1-2.pdf")

	if err := m.PutFile(context.Background(), "report-1-2.pdf"); err != nil {
		t.Fatal(err)
	}

	if err := m.PutFile(context.Background(), "missing.pdf"); err != nil {
		t.Errorf("missing file should be skipped, got %v", err)
	}

	if err := m.PutFile(context.Background(), "../escape.pdf"); err != nil {
		t.Errorf("invalid name should be skipped, got %v", err)
	}

	if len(store.puts) != 1 {
		t.Fatalf("puts = %+v", store.puts)
	}

	got := store.puts[0]
	if got.key != "uploads/report-1-2.pdf" || got.contentType != "application/pdf" || got.path != filepath.Join(d.Root(), "report-1-2.pdf") {
		t.Errorf("put = %+v", got)
	}
}

// TestSync 测试批量同步在单个失败时继续并汇总错误.
func TestSync(t *testing.T) {
	m, store, d := newMirror(t)
	writeFile(t, d, "a.pdf")
	writeFile(t, d, "b.pdf")

	n, err := m.Sync(context.Background(), []model.FileRecord{{StoredName: "a.pdf"}, {StoredName: "b.pdf"}})
	if err != nil || n != 2 {
		t.Errorf("Sync() = %d, %v", n, err)
	}

	store.failPut = true

	n, err = m.Sync(context.Background(), []model.FileRecord{{StoredName: "a.pdf"}})
	if err == nil || n != 0 {
		t.Errorf("Sync() with failing store = %d, %v", n, err)
	}
}

// TestEvents 测试通过事件总线驱动镜像.
func TestEvents(t *testing.T) {
	m, store, d := newMirror(t)
	writeFile(t, d, "x.pdf")

	client, err := mq.New(context.Background(), configs.MQConfig{
		Type:      configs.MQTypeGoChannel,
		GoChannel: configs.GoChannelConfig{BufferSize: 16},
	}, mq.Options{PoisonTopic: queue.TopicPoison})
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { _ = client.Close() })

	m.Register(client)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go func() { _ = client.Run(ctx) }()

	select {
	case <-client.Running():
	case <-ctx.Done():
		t.Fatal("router did not start")
	}

	ref := queue.FileRef{ID: "01", StoredName: "x.pdf", Size: 8}

	if err := queue.PublishFileStored(ctx, client, queue.FileStoredPayload{File: ref}); err != nil {
		t.Fatal(err)
	}

	if err := queue.PublishFileDeleted(ctx, client, queue.FileDeletedPayload{File: ref, FileRemoved: true}); err != nil {
		t.Fatal(err)
	}

	for range 2 {
		select {
		case <-store.changed:
		case <-ctx.Done():
			t.Fatal("timeout waiting for mirror")
		}
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if len(store.puts) != 1 || store.puts[0].key != "uploads/x.pdf" {
		t.Errorf("puts = %+v", store.puts)
	}

	if len(store.removes) != 1 || store.removes[0] != "uploads/x.pdf" {
		t.Errorf("removes = %+v", store.removes)
	}
}
