package server

import (
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileListAndFilter(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	require.NoError(t, os.WriteFile(ts.files.OutputPath("final_render_a.mp4"), []byte("v"), 0o644))
	_, err := ts.files.SaveUpload("notes.txt", strings.NewReader("n"))
	require.NoError(t, err)

	w := ts.do(t, http.MethodGet, "/files", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeMap(t, w)
	require.Len(t, body["files"], 2)

	w = ts.do(t, http.MethodGet, "/files?file_type=mp4", nil, "")
	body = decodeMap(t, w)
	files := body["files"].([]any)
	require.Len(t, files, 1)
	require.Equal(t, "final_render_a.mp4", files[0].(map[string]any)["name"])
}

func TestFileListEmpty(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/files", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"files":[]}`, w.Body.String())
}

func TestFileDownload(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	require.NoError(t, os.WriteFile(ts.files.OutputPath("subtitles_talk.srt"), []byte("1\n"), 0o644))

	w := ts.do(t, http.MethodGet, "/files/subtitles_talk.srt", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "subtitles_talk.srt")
	require.Equal(t, "1\n", w.Body.String())

	w = ts.do(t, http.MethodGet, "/files/absent.mp4", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFileDelete(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	_, err := ts.files.SaveUpload("old.mp4", strings.NewReader("v"))
	require.NoError(t, err)

	w := ts.do(t, http.MethodDelete, "/files/old.mp4", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodDelete, "/files/old.mp4", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
