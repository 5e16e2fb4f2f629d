package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/yeisme/docshelf/pkg/cache"
	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/internal/manifest"
	"github.com/yeisme/docshelf/pkg/internal/model"
	"github.com/yeisme/docshelf/pkg/internal/service"
	"github.com/yeisme/docshelf/pkg/internal/storage/disk"
	"github.com/yeisme/docshelf/pkg/internal/storage/kv"
	nlog "github.com/yeisme/docshelf/pkg/log"
	"github.com/yeisme/docshelf/pkg/queue"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type capturePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *capturePublisher) Publish(_ context.Context, topic string, _ ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.topics = append(p.topics, topic)

	return nil
}

func (p *capturePublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.topics...)
}

type env struct {
	svc   *service.FileService
	disk  *disk.Store
	store manifest.Store
	pub   *capturePublisher
	dir   string
}

func newEnv(t *testing.T, mutate func(*service.Options)) *env {
	t.Helper()
	nlog.Use(zerolog.Nop())

	root := t.TempDir()
	dir := filepath.Join(root, "uploads")

	d, err := disk.New(dir)
	if err != nil {
		t.Fatal(err)
	}

	store, err := manifest.NewJSONStore(filepath.Join(root, "files-list.json"))
	if err != nil {
		t.Fatal(err)
	}

	cfg := configs.Defaults()
	cfg.Events.File.Orphaned = true
	pub := &capturePublisher{}

	opts := service.Options{
		Disk:      d,
		Manifest:  store,
		Upload:    cfg.Upload,
		Events:    cfg.Events,
		Publisher: pub,
	}
	if mutate != nil {
		mutate(&opts)
	}

	return &env{svc: service.NewFileService(opts), disk: d, store: opts.Manifest, pub: pub, dir: dir}
}

func pngInput(name string) service.UploadInput {
	return service.UploadInput{
		Filename:     name,
		DeclaredType: "image/png",
		Size:         int64(len(pngBytes)),
		Content:      bytes.NewReader(pngBytes),
	}
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}

// TestUploadAndList 测试上传后列表与磁盘内容.
func TestUploadAndList(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	rec, err := e.svc.Upload(ctx, pngInput("café photo.png"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if !regexp.MustCompile(`^cafe_photo-\d+-\d+\.png$`).MatchString(rec.StoredName) {
		t.Errorf("stored name = %q", rec.StoredName)
	}

	if rec.OriginalName != "café photo.png" || rec.MimeType != "image/png" || rec.Size != int64(len(pngBytes)) {
		t.Errorf("record = %+v", rec)
	}

	if rec.Checksum == "" || rec.ID == "" || rec.UploadedAt.IsZero() {
		t.Errorf("record missing generated fields: %+v", rec)
	}

	got, err := os.ReadFile(filepath.Join(e.dir, rec.StoredName))
	if err != nil || !bytes.Equal(got, pngBytes) {
		t.Fatalf("stored bytes mismatch: %v", err)
	}

	files, err := e.svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 1 || files[0].ID != rec.ID {
		t.Errorf("List() = %+v", files)
	}

	if topics := e.pub.Topics(); len(topics) != 1 || topics[0] != queue.TopicFileStored {
		t.Errorf("published topics = %v", topics)
	}
}

// TestListEmpty 测试没有记录时返回空切片.
func TestListEmpty(t *testing.T) {
	e := newEnv(t, nil)

	files, err := e.svc.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if files == nil || len(files) != 0 {
		t.Errorf("List() = %#v, want empty slice", files)
	}
}

// TestUploadUnique 测试同名文件多次上传得到不同的存储名与 id.
func TestUploadUnique(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	const n = 25

	names := map[string]bool{}
	ids := map[string]bool{}

	for range n {
		rec, err := e.svc.Upload(ctx, pngInput("report.png"))
		if err != nil {
			t.Fatalf("Upload() error = %v", err)
		}

		names[rec.StoredName] = true
		ids[rec.ID] = true
	}

	if len(names) != n || len(ids) != n {
		t.Errorf("unique names = %d, ids = %d, want %d", len(names), len(ids), n)
	}

	files, _ := e.svc.List(ctx)
	if len(files) != n {
		t.Errorf("manifest records = %d, want %d", len(files), n)
	}
}

// TestUploadValidation 测试各类校验失败都不写磁盘也不改清单.
func TestUploadValidation(t *testing.T) {
	e := newEnv(t, func(o *service.Options) { o.Upload.MaxSizeMB = 1 })
	ctx := context.Background()

	oversized := bytes.Repeat([]byte("x"), 1<<20+1)

	cases := []struct {
		name string
		in   service.UploadInput
		want error
	}{
		{"no file", service.UploadInput{Filename: "a.pdf", DeclaredType: "application/pdf"}, service.ErrNoFile},
		{"zip", service.UploadInput{
			Filename: "a.zip", DeclaredType: "application/zip", Size: 3, Content: strings.NewReader("PK\x03"),
		}, service.ErrUnsupportedType},
		{"declared too large", service.UploadInput{
			Filename: "a.pdf", DeclaredType: "application/pdf", Size: 2 << 20, Content: strings.NewReader("x"),
		}, service.ErrFileTooLarge},
		{"streamed too large", service.UploadInput{
			Filename: "a.pdf", DeclaredType: "application/pdf", Size: -1, Content: bytes.NewReader(oversized),
		}, service.ErrFileTooLarge},
		{"empty", service.UploadInput{
			Filename: "a.pdf", DeclaredType: "application/pdf", Size: 0, Content: strings.NewReader(""),
		}, service.ErrEmptyFile},
		{"empty unknown size", service.UploadInput{
			Filename: "a.pdf", DeclaredType: "application/pdf", Size: -1, Content: strings.NewReader(""),
		}, service.ErrEmptyFile},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.Upload(ctx, tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Upload() error = %v, want %v", err, tc.want)
			}

			var verr *service.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("error %T is not a ValidationError", err)
			}

			if names := dirNames(t, e.dir); len(names) != 0 {
				t.Errorf("upload dir not empty: %v", names)
			}

			if files, _ := e.svc.List(ctx); len(files) != 0 {
				t.Errorf("manifest mutated: %v", files)
			}
		})
	}
}

// TestTooLargeMessage 测试超限消息包含配置的上限.
func TestTooLargeMessage(t *testing.T) {
	e := newEnv(t, nil)

	_, err := e.svc.Upload(context.Background(), service.UploadInput{
		Filename: "big.pdf", DeclaredType: "application/pdf", Size: 51 << 20, Content: strings.NewReader("x"),
	})
	if err == nil || err.Error() != "File too large. Maximum size is 50MB." {
		t.Errorf("error = %v", err)
	}
}

// TestUploadSignature 测试开启签名校验后内容与声明类型必须相符.
func TestUploadSignature(t *testing.T) {
	e := newEnv(t, func(o *service.Options) { o.Upload.VerifySignature = true })
	ctx := context.Background()

	_, err := e.svc.Upload(ctx, service.UploadInput{
		Filename: "fake.pdf", DeclaredType: "application/pdf", Size: int64(len(pngBytes)), Content: bytes.NewReader(pngBytes),
	})
	if !errors.Is(err, service.ErrSignatureMismatch) {
		t.Fatalf("Upload() error = %v, want signature mismatch", err)
	}

	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")

	rec, err := e.svc.Upload(ctx, service.UploadInput{
		Filename: "real.pdf", DeclaredType: "application/pdf", Size: int64(len(pdf)), Content: bytes.NewReader(pdf),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	got, _ := os.ReadFile(filepath.Join(e.dir, rec.StoredName))
	if !bytes.Equal(got, pdf) {
		t.Error("sniffed bytes were not written")
	}
}

// TestContentTypeFor 测试按扩展名确定类型.
func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"a.pdf":          "application/pdf",
		"A.PDF":          "application/pdf",
		"b.png":          "image/png",
		"c.jpg":          "image/jpeg",
		"c.JPEG":         "image/jpeg",
		"d.docx":         "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"e.webp":         "image/webp",
		"f.txt":          service.DefaultContentType,
		"noext":          service.DefaultContentType,
		"archive.tar.gz": service.DefaultContentType,
	}

	for name, want := range cases {
		if got := service.ContentTypeFor(name); got != want {
			t.Errorf("ContentTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}

// TestResolve 测试读取、穿越与缺失.
func TestResolve(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	rec, err := e.svc.Upload(ctx, pngInput("pic.png"))
	if err != nil {
		t.Fatal(err)
	}

	rf, err := e.svc.Resolve(ctx, rec.StoredName)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if rf.ContentType != "image/png" || rf.Size() != int64(len(pngBytes)) {
		t.Errorf("resolved = %q, %d", rf.ContentType, rf.Size())
	}

	_ = rf.Close()

	for _, name := range []string{"missing.pdf", "../files-list.json", "..", "", "sub/x.png"} {
		if _, err := e.svc.Resolve(ctx, name); !errors.Is(err, service.ErrNotFound) {
			t.Errorf("Resolve(%q) error = %v, want ErrNotFound", name, err)
		}
	}
}

// TestInspect 测试文件诊断信息.
func TestInspect(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	pdf := []byte("%PDF-1.7\n")
	if _, err := e.disk.Save(bytes.NewReader(pdf), "doc.pdf", 0); err != nil {
		t.Fatal(err)
	}

	info, err := e.svc.Inspect(ctx, "doc.pdf")
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if !info.IsPDF || info.Header != "%PDF" || info.FirstBytes != "25 50 44 46" {
		t.Errorf("inspection = %+v", info)
	}

	if info.DetectedType != "application/pdf" || info.URL != "/uploads/doc.pdf" || info.Size != int64(len(pdf)) {
		t.Errorf("inspection = %+v", info)
	}
}

// TestDelete 测试删除记录与文件.
func TestDelete(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	rec, err := e.svc.Upload(ctx, pngInput("to-delete.png"))
	if err != nil {
		t.Fatal(err)
	}

	removed, err := e.svc.Delete(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if removed.ID != rec.ID {
		t.Errorf("removed = %+v", removed)
	}

	if e.disk.Exists(rec.StoredName) {
		t.Error("file still on disk")
	}

	if _, err := e.svc.Delete(ctx, rec.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	topics := e.pub.Topics()
	if len(topics) != 2 || topics[1] != queue.TopicFileDeleted {
		t.Errorf("published topics = %v", topics)
	}
}

// TestDeleteMissingFile 测试物理文件已不存在时仍删除记录.
func TestDeleteMissingFile(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	rec, err := e.svc.Upload(ctx, pngInput("gone.png"))
	if err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(e.dir, rec.StoredName)); err != nil {
		t.Fatal(err)
	}

	if _, err := e.svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if files, _ := e.svc.List(ctx); len(files) != 0 {
		t.Errorf("records left: %v", files)
	}
}

type failingAppend struct {
	manifest.Store
}

func (failingAppend) Append(context.Context, model.FileRecord) error {
	return errors.New("disk full")
}

// TestAppendFailureLeavesOrphan 测试清单写入失败返回 IOError 并由对账发现孤儿.
func TestAppendFailureLeavesOrphan(t *testing.T) {
	e := newEnv(t, func(o *service.Options) { o.Manifest = failingAppend{o.Manifest} })
	ctx := context.Background()

	_, err := e.svc.Upload(ctx, pngInput("orphan.png"))

	var ioErr *service.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Upload() error = %v, want IOError", err)
	}

	report, err := e.svc.Reconcile(ctx, service.ReconcileOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Orphans) != 1 || !strings.HasPrefix(report.Orphans[0].Name, "orphan-") {
		t.Errorf("orphans = %+v", report.Orphans)
	}
}

// TestReconcile 测试孤儿与缺失文件的识别以及按宽限期清理.
func TestReconcile(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	kept, err := e.svc.Upload(ctx, pngInput("kept.png"))
	if err != nil {
		t.Fatal(err)
	}

	lost, err := e.svc.Upload(ctx, pngInput("lost.png"))
	if err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(e.dir, lost.StoredName)); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"old-orphan.pdf", "fresh-orphan.pdf", disk.TempPrefix + "inflight"} {
		if err := os.WriteFile(filepath.Join(e.dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(e.dir, "old-orphan.pdf"), old, old); err != nil {
		t.Fatal(err)
	}

	report, err := e.svc.Reconcile(ctx, service.ReconcileOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Orphans) != 2 || report.Pruned != 0 {
		t.Errorf("report = %+v", report)
	}

	if len(report.Missing) != 1 || report.Missing[0].ID != lost.ID {
		t.Errorf("missing = %+v", report.Missing)
	}

	report, err = e.svc.Reconcile(ctx, service.ReconcileOptions{Prune: true, Grace: 10 * time.Minute})
	if err != nil {
		t.Fatal(err)
	}

	if report.Pruned != 1 {
		t.Errorf("pruned = %d, want 1", report.Pruned)
	}

	if e.disk.Exists("old-orphan.pdf") || !e.disk.Exists("fresh-orphan.pdf") || !e.disk.Exists(kept.StoredName) {
		t.Error("prune removed the wrong files")
	}

	orphaned := 0
	for _, topic := range e.pub.Topics() {
		if topic == queue.TopicFileOrphaned {
			orphaned++
		}
	}

	if orphaned != 4 {
		t.Errorf("orphaned events = %d, want 4", orphaned)
	}
}

// TestListingCache 测试变更后列表缓存失效.
func TestListingCache(t *testing.T) {
	mem, err := kv.NewMemoryKV(context.Background(), configs.KVConfig{})
	if err != nil {
		t.Fatal(err)
	}

	listing := cache.NewListing[model.FileRecord](cache.NewCache(mem, "test:"), "files", time.Minute)
	e := newEnv(t, func(o *service.Options) { o.Listing = listing })
	ctx := context.Background()

	if files, _ := e.svc.List(ctx); len(files) != 0 {
		t.Fatalf("List() = %v", files)
	}

	rec, err := e.svc.Upload(ctx, pngInput("cached.png"))
	if err != nil {
		t.Fatal(err)
	}

	if files, _ := e.svc.List(ctx); len(files) != 1 {
		t.Fatalf("List() after upload = %v", files)
	}

	if _, err := e.svc.Delete(ctx, rec.ID); err != nil {
		t.Fatal(err)
	}

	if files, _ := e.svc.List(ctx); len(files) != 0 {
		t.Errorf("List() after delete = %v", files)
	}
}
