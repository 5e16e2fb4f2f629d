package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/metrics"
)

// TestHandler 测试领域指标被导出.
func TestHandler(t *testing.T) {
	cfg := configs.Defaults().Metrics
	cfg.Enabled = true

	if err := metrics.Init(cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	// 幂等
	if err := metrics.Init(cfg); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}

	metrics.UploadsTotal.WithLabelValues(metrics.ResultOK).Inc()
	metrics.OrphanFiles.Set(2)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`docshelf_uploads_total{result="ok",service="docshelf"} 1`,
		`docshelf_orphan_files{service="docshelf"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
