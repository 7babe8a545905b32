//go:build integration

// Package itest drives the clipstudio binary and the full HTTP stack
// against real ffmpeg and ffprobe. Everything here is tagged integration
// so a plain go test run stays tool-free.
package itest

import (
	"fmt"
	"os"
	"path/filepath"
)

func findRepoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 10; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("go.mod not found above %s", dir)
}
