package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTest(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "studio.db"))
	require.NoError(t, err)
	return db
}

func TestOpenMigratesSchema(t *testing.T) {
	db := openTest(t)

	require.NoError(t, db.Create(&KPI{Date: time.Now(), Platform: "youtube", MetricName: "views", MetricValue: 1200}).Error)
	require.NoError(t, db.Create(&Finance{Date: time.Now(), Category: "gear", Amount: 99.5}).Error)
	require.NoError(t, db.Create(&Habit{Date: time.Now(), Name: "write", Completed: true, Streak: 3}).Error)

	var n int64
	require.NoError(t, db.Model(&KPI{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestTaskDefaultsAndSessions(t *testing.T) {
	db := openTest(t)

	task := Task{Title: "edit montage"}
	require.NoError(t, db.Create(&task).Error)

	var got Task
	require.NoError(t, db.First(&got, task.ID).Error)
	require.Equal(t, "pending", got.Status)
	require.Equal(t, 0, got.Priority)

	dur := 1500
	require.NoError(t, db.Create(&WorkSession{StartTime: time.Now(), Duration: &dur, TaskID: &task.ID}).Error)

	var withSessions Task
	require.NoError(t, db.Preload("WorkSessions").First(&withSessions, task.ID).Error)
	require.Len(t, withSessions.WorkSessions, 1)
	require.Equal(t, 1500, *withSessions.WorkSessions[0].Duration)
}

func TestContentStageDefault(t *testing.T) {
	db := openTest(t)

	item := ContentItem{Title: "silence remover tutorial"}
	require.NoError(t, db.Create(&item).Error)

	var got ContentItem
	require.NoError(t, db.First(&got, item.ID).Error)
	require.Equal(t, "Idea", got.Stage)
}

func TestValidStage(t *testing.T) {
	require.True(t, ValidStage("Idea"))
	require.True(t, ValidStage("Analyze"))
	require.False(t, ValidStage("idea"))
	require.False(t, ValidStage("Publish"))
	require.False(t, ValidStage(""))
}

func TestKanbanGraph(t *testing.T) {
	db := openTest(t)

	board := KanbanBoard{Name: "release plan", Columns: []KanbanColumn{
		{Name: "todo", Order: 0},
		{Name: "doing", Order: 1},
	}}
	require.NoError(t, db.Create(&board).Error)

	label := Label{Name: "urgent", Color: "#ff0000"}
	require.NoError(t, db.Create(&label).Error)

	card := KanbanCard{Title: "cut trailer", ColumnID: board.Columns[0].ID}
	require.NoError(t, db.Create(&card).Error)
	require.NoError(t, db.Create(&CardLabel{CardID: card.ID, LabelID: label.ID}).Error)

	var got KanbanBoard
	require.NoError(t, db.Preload("Columns.Cards.Labels.Label").First(&got, board.ID).Error)
	require.Len(t, got.Columns, 2)

	var todo *KanbanColumn
	for i := range got.Columns {
		if got.Columns[i].Name == "todo" {
			todo = &got.Columns[i]
		}
	}
	require.NotNil(t, todo)
	require.Len(t, todo.Cards, 1)
	require.Len(t, todo.Cards[0].Labels, 1)
	require.Equal(t, "urgent", todo.Cards[0].Labels[0].Label.Name)
}

func TestLabelColorDefault(t *testing.T) {
	db := openTest(t)

	label := Label{Name: "later"}
	require.NoError(t, db.Create(&label).Error)

	var got Label
	require.NoError(t, db.First(&got, label.ID).Error)
	require.Equal(t, "#cccccc", got.Color)
}
