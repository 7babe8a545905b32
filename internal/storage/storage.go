// Package storage keeps uploaded media and rendered outputs on disk under
// two flat directories and resolves names across both.
package storage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Store struct {
	uploads string
	outputs string
}

type FileInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Modified  time.Time `json:"modified"`
	Directory string    `json:"directory"`
}

func New(uploadsDir, outputsDir string) (*Store, error) {
	for _, dir := range []string{uploadsDir, outputsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	return &Store{uploads: uploadsDir, outputs: outputsDir}, nil
}

func (s *Store) Uploads() string { return s.uploads }
func (s *Store) Outputs() string { return s.outputs }

// SaveUpload writes the reader under a sanitized file name in the uploads
// directory. A name collision gets a short unique suffix instead of
// clobbering the existing file.
func (s *Store) SaveUpload(name string, r io.Reader) (string, error) {
	name = sanitizeName(name)
	path := filepath.Join(s.uploads, name)
	if _, err := os.Stat(path); err == nil {
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		path = filepath.Join(s.uploads, stem+"_"+uuid.NewString()[:8]+ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("save upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path, nil
}

// OutputPath maps a result name into the outputs directory.
func (s *Store) OutputPath(name string) string {
	return filepath.Join(s.outputs, sanitizeName(name))
}

// Resolve finds a file by bare name, checking uploads before outputs.
func (s *Store) Resolve(name string) (string, bool) {
	name = sanitizeName(name)
	for _, dir := range []string{s.uploads, s.outputs} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// List returns the files of both directories, newest first. A non-empty ext
// (without the dot) keeps only matching files.
func (s *Store) List(ext string) ([]FileInfo, error) {
	var out []FileInfo
	for _, dir := range []string{s.uploads, s.outputs} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if ext != "" && !strings.HasSuffix(e.Name(), "."+ext) {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			out = append(out, FileInfo{
				Name:      e.Name(),
				Path:      filepath.Join(dir, e.Name()),
				Size:      info.Size(),
				Modified:  info.ModTime(),
				Directory: filepath.Base(dir),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Modified.After(out[j].Modified) })
	return out, nil
}

// Delete removes a file by bare name from whichever directory holds it.
func (s *Store) Delete(name string) error {
	path, ok := s.Resolve(name)
	if !ok {
		return fmt.Errorf("delete %s: %w", name, fs.ErrNotExist)
	}
	return os.Remove(path)
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return uuid.NewString()
	}
	return name
}
