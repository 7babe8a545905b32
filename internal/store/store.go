// Package store persists the planning side of the studio: KPIs, finances,
// habits, tasks with work sessions, the content pipeline, and kanban boards.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the SQLite database at path and migrates the schema.
func Open(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&KPI{}, &Finance{}, &Habit{},
		&Task{}, &WorkSession{}, &ContentItem{},
		&KanbanBoard{}, &KanbanColumn{}, &KanbanCard{}, &Label{}, &CardLabel{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}
