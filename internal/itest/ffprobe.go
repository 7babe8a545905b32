//go:build integration

package itest

import (
	"os/exec"
	"strconv"
	"strings"
	"testing"
)

func probeDuration(t *testing.T, mediaPath string) float64 {
	t.Helper()

	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mediaPath,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("ffprobe %s: %v\n%s", mediaPath, err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("parse ffprobe duration %q: %v", s, err)
	}
	return sec
}
