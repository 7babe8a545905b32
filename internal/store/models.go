package store

import "time"

// KPI is one recorded metric value for a platform on a date.
type KPI struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Date        time.Time `gorm:"index" json:"date"`
	Platform    string    `gorm:"index" json:"platform"`
	MetricName  string    `gorm:"index" json:"metric_name"`
	MetricValue float64   `json:"metric_value"`
	Notes       string    `json:"notes,omitempty"`
}

// Finance is one income or expense entry.
type Finance struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Date        time.Time `gorm:"index" json:"date"`
	Category    string    `gorm:"index" json:"category"`
	Amount      float64   `json:"amount"`
	IsIncome    bool      `json:"is_income"`
	Description string    `json:"description,omitempty"`
}

// Habit is one daily habit check with its running streak.
type Habit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"index" json:"date"`
	Name      string    `gorm:"index" json:"name"`
	Completed bool      `json:"completed"`
	Streak    int       `json:"streak"`
	Notes     string    `json:"notes,omitempty"`
}

// Task statuses and priorities mirror what the dashboard presents:
// priority 0=low 1=medium 2=high, status pending/in-progress/completed.
type Task struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Title        string        `gorm:"index" json:"title"`
	Description  string        `json:"description,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	Deadline     *time.Time    `json:"deadline,omitempty"`
	Priority     int           `json:"priority"`
	Status       string        `gorm:"default:pending" json:"status"`
	Tags         string        `json:"tags,omitempty"`
	WorkSessions []WorkSession `gorm:"foreignKey:TaskID" json:"work_sessions,omitempty"`
}

// WorkSession is a tracked stretch of work, optionally tied to a task.
// Duration is in seconds and filled when the session ends.
type WorkSession struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Duration    *int       `json:"duration,omitempty"`
	TaskID      *uint      `json:"task_id,omitempty"`
	Description string     `json:"description,omitempty"`
}

// ContentItem tracks one piece of content through the production stages.
type ContentItem struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Title             string     `gorm:"index" json:"title"`
	CreatedAt         time.Time  `json:"created_at"`
	Description       string     `json:"description,omitempty"`
	Stage             string     `gorm:"default:Idea" json:"stage"`
	Platform          string     `json:"platform,omitempty"`
	TargetReleaseDate *time.Time `json:"target_release_date,omitempty"`
	ActualReleaseDate *time.Time `json:"actual_release_date,omitempty"`
	AssociatedFiles   string     `json:"associated_files,omitempty"`
}

// ContentStages is the production pipeline order for content items.
var ContentStages = []string{"Idea", "Script", "Record", "Edit", "Upload", "Analyze"}

func ValidStage(stage string) bool {
	for _, s := range ContentStages {
		if s == stage {
			return true
		}
	}
	return false
}

type KanbanBoard struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"index" json:"name"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	Columns     []KanbanColumn `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"columns,omitempty"`
}

type KanbanColumn struct {
	ID      uint         `gorm:"primaryKey" json:"id"`
	Name    string       `gorm:"index" json:"name"`
	Order   int          `json:"order"`
	BoardID uint         `gorm:"index" json:"board_id"`
	Cards   []KanbanCard `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE" json:"cards,omitempty"`
}

type KanbanCard struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Title       string      `gorm:"index" json:"title"`
	Description string      `json:"description,omitempty"`
	Order       int         `json:"order"`
	CreatedAt   time.Time   `json:"created_at"`
	ColumnID    uint        `gorm:"index" json:"column_id"`
	Labels      []CardLabel `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"labels,omitempty"`
}

type Label struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"index" json:"name"`
	Color string `gorm:"default:'#cccccc'" json:"color"`
}

type CardLabel struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	CardID  uint  `gorm:"index" json:"card_id"`
	LabelID uint  `gorm:"index" json:"label_id"`
	Label   Label `gorm:"foreignKey:LabelID" json:"label,omitempty"`
}
