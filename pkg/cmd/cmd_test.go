package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", t.TempDir()}, args...))

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}

	return out.String()
}

// TestBackends 测试列出各类已注册后端.
func TestBackends(t *testing.T) {
	out := run(t, "backends")

	for _, want := range []string{"database types", "kv types", "mq types", "memory", "gochannel", "nats"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestFilesName 测试存储名预览.
func TestFilesName(t *testing.T) {
	out := run(t, "files", "name", "café photo.png")

	if !strings.Contains(out, "sanitized: cafe_photo.png") {
		t.Errorf("output = %s", out)
	}

	if !strings.Contains(out, "stored:    cafe_photo-") || !strings.Contains(out, ".png") {
		t.Errorf("output = %s", out)
	}
}
