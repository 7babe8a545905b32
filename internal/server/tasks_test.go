package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTaskCreateDefaults(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	w := ts.doJSON(t, http.MethodPost, "/tasks", map[string]any{
		"title":    "edit vlog",
		"priority": 2,
		"tags":     "editing,urgent",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decodeMap(t, w)
	require.Equal(t, "pending", created["status"])
	require.EqualValues(t, 2, created["priority"])
	require.NotZero(t, created["id"])
}

func TestTaskDueFilter(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	base := startOfDay(time.Now())
	create := func(title string, deadline *time.Time) {
		payload := map[string]any{"title": title}
		if deadline != nil {
			payload["deadline"] = deadline.Format(time.RFC3339)
		}
		w := ts.doJSON(t, http.MethodPost, "/tasks", payload)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	today := base.Add(12 * time.Hour)
	thisWeek := base.AddDate(0, 0, 3)
	later := base.AddDate(0, 0, 9)
	create("due today", &today)
	create("due this week", &thisWeek)
	create("due later", &later)
	create("no deadline", nil)

	w := ts.do(t, http.MethodGet, "/tasks?due_filter=today", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w)
	require.Len(t, list, 1)
	require.Equal(t, "due today", list[0]["title"])

	w = ts.do(t, http.MethodGet, "/tasks?due_filter=week", nil, "")
	require.Len(t, decodeList(t, w), 2)

	w = ts.do(t, http.MethodGet, "/tasks", nil, "")
	require.Len(t, decodeList(t, w), 4)
}

func TestWorkSessionCreateAndList(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	w := ts.doJSON(t, http.MethodPost, "/tasks/work-sessions", map[string]any{
		"description": "rough cut pass",
		"duration":    1500,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeMap(t, w)
	require.NotEmpty(t, created["start_time"])

	w = ts.do(t, http.MethodGet, "/tasks/work-sessions", nil, "")
	list := decodeList(t, w)
	require.Len(t, list, 1)
	require.EqualValues(t, 1500, list[0]["duration"])
}

func TestContentItemLifecycle(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	w := ts.doJSON(t, http.MethodPost, "/tasks/content", map[string]any{
		"title":    "gear review",
		"platform": "youtube",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeMap(t, w)
	require.Equal(t, "Idea", created["stage"])
	id := created["id"].(float64)

	w = ts.do(t, http.MethodPut, fmt.Sprintf("/tasks/content/%v/stage?stage=Script", id), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "Script", decodeMap(t, w)["stage"])

	w = ts.do(t, http.MethodPut, fmt.Sprintf("/tasks/content/%v/stage?stage=Polish", id), nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPut, "/tasks/content/9999/stage?stage=Edit", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
