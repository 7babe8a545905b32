package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clipstudio/internal/storage"
)

func TestFormatSize(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tc := range cases {
		if got := formatSize(tc.in); got != tc.want {
			t.Errorf("formatSize(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRenderFileTable(t *testing.T) {
	infos := []storage.FileInfo{
		{Name: "final_render_a.mp4", Directory: "outputs", Size: 2048, Modified: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)},
		{Name: "talk.mp4", Directory: "uploads", Size: 100, Modified: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)},
	}
	got := renderFileTable(infos)
	for _, want := range []string{"NAME", "final_render_a.mp4", "2.0 KiB", "uploads", "2025-06-01 09:30"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
}

func TestFilesCommandPlainOutput(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	outDir := filepath.Join(home, ".local", "share", "clipstudio", "outputs")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "final_render_a.mp4"), []byte("media"), 0o644); err != nil {
		t.Fatal(err)
	}

	configFlag := ""
	cmd := newFilesCommand(&configFlag)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("files command: %v", err)
	}

	// A bytes.Buffer is not a terminal, so the output is the plain listing.
	out := buf.String()
	if !strings.Contains(out, "final_render_a.mp4") {
		t.Fatalf("listing missing seeded file:\n%s", out)
	}
	if !strings.Contains(out, "outputs") {
		t.Fatalf("listing missing directory column:\n%s", out)
	}
}

func TestFilesCommandEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	configFlag := ""
	cmd := newFilesCommand(&configFlag)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("files command: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "no files" {
		t.Fatalf("expected empty listing message, got %q", got)
	}
}

func TestVersionCommandOutput(t *testing.T) {
	cmd := newVersionCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "clipstudio "+Version {
		t.Fatalf("version output = %q", got)
	}
}
