package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"clipstudio/internal/store"
)

func TestKanbanFlow(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	w := ts.doJSON(t, http.MethodPost, "/kanban/boards", map[string]any{"name": "editing pipeline"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	boardID := decodeMap(t, w)["id"].(float64)

	w = ts.doJSON(t, http.MethodPost, "/kanban/columns", map[string]any{
		"name": "todo", "order": 1, "board_id": boardID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	todoID := decodeMap(t, w)["id"].(float64)

	w = ts.doJSON(t, http.MethodPost, "/kanban/columns", map[string]any{
		"name": "doing", "order": 0, "board_id": boardID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	doingID := decodeMap(t, w)["id"].(float64)

	w = ts.doJSON(t, http.MethodPost, "/kanban/cards", map[string]any{
		"title": "rough cut", "column_id": todoID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cardID := decodeMap(t, w)["id"].(float64)

	w = ts.doJSON(t, http.MethodPost, "/kanban/labels", map[string]any{"name": "urgent"})
	require.Equal(t, http.StatusCreated, w.Code)
	label := decodeMap(t, w)
	require.Equal(t, "#cccccc", label["color"])

	w = ts.doJSON(t, http.MethodPost, fmt.Sprintf("/kanban/cards/%v/labels", cardID), map[string]any{
		"label_id": label["id"],
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.doJSON(t, http.MethodPost, fmt.Sprintf("/kanban/cards/%v/move", cardID), map[string]any{
		"column_id": doingID, "order": 2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.EqualValues(t, doingID, decodeMap(t, w)["column_id"])

	// Full graph, columns ordered by their order field.
	w = ts.do(t, http.MethodGet, fmt.Sprintf("/kanban/boards/%v", boardID), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	board := decodeMap(t, w)
	columns := board["columns"].([]any)
	require.Len(t, columns, 2)
	first := columns[0].(map[string]any)
	require.Equal(t, "doing", first["name"])
	cards := first["cards"].([]any)
	require.Len(t, cards, 1)
	labels := cards[0].(map[string]any)["labels"].([]any)
	require.Len(t, labels, 1)
	require.Equal(t, "urgent", labels[0].(map[string]any)["label"].(map[string]any)["name"])

	w = ts.do(t, http.MethodDelete, fmt.Sprintf("/kanban/boards/%v", boardID), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/kanban/boards/%v", boardID), nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var columnCount, cardCount, linkCount int64
	require.NoError(t, ts.db.Model(&store.KanbanColumn{}).Count(&columnCount).Error)
	require.NoError(t, ts.db.Model(&store.KanbanCard{}).Count(&cardCount).Error)
	require.NoError(t, ts.db.Model(&store.CardLabel{}).Count(&linkCount).Error)
	require.Zero(t, columnCount)
	require.Zero(t, cardCount)
	require.Zero(t, linkCount)
}

func TestKanbanMissingParents(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	w := ts.doJSON(t, http.MethodPost, "/kanban/columns", map[string]any{
		"name": "todo", "board_id": 999,
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "board not found")

	w = ts.doJSON(t, http.MethodPost, "/kanban/cards", map[string]any{
		"title": "x", "column_id": 999,
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = ts.doJSON(t, http.MethodPost, "/kanban/cards/999/move", map[string]any{"column_id": 1})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestKanbanBoardList(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	for _, name := range []string{"shorts", "longform"} {
		w := ts.doJSON(t, http.MethodPost, "/kanban/boards", map[string]any{"name": name})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := ts.do(t, http.MethodGet, "/kanban/boards", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeList(t, w), 2)
}
