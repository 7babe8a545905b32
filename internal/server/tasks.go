package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clipstudio/internal/store"
)

func (s *Server) createTask(c *gin.Context) {
	var t store.Task
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t.ID = 0
	t.WorkSessions = nil
	if t.Status == "" {
		t.Status = "pending"
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if err := s.d.DB.Create(&t).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

// listTasks pages through tasks, optionally narrowed by deadline:
// due_filter=today keeps tasks due before midnight, due_filter=week those
// due within the next seven days.
func (s *Server) listTasks(c *gin.Context) {
	offset, limit := pageParams(c)

	q := s.d.DB
	switch c.Query("due_filter") {
	case "today":
		start := startOfDay(time.Now())
		q = q.Where("deadline >= ? AND deadline < ?", start, start.AddDate(0, 0, 1))
	case "week":
		start := startOfDay(time.Now())
		q = q.Where("deadline >= ? AND deadline < ?", start, start.AddDate(0, 0, 8))
	}

	var tasks []store.Task
	if err := q.Offset(offset).Limit(limit).Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) createWorkSession(c *gin.Context) {
	var ws store.WorkSession
	if err := c.ShouldBindJSON(&ws); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ws.ID = 0
	if ws.StartTime.IsZero() {
		ws.StartTime = time.Now()
	}
	if err := s.d.DB.Create(&ws).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ws)
}

func (s *Server) listWorkSessions(c *gin.Context) {
	offset, limit := pageParams(c)
	var sessions []store.WorkSession
	if err := s.d.DB.Offset(offset).Limit(limit).Find(&sessions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (s *Server) createContentItem(c *gin.Context) {
	var item store.ContentItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item.ID = 0
	if item.Stage == "" {
		item.Stage = store.ContentStages[0]
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if err := s.d.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) updateContentStage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content id"})
		return
	}
	stage := c.Query("stage")
	if stage == "" {
		stage = c.PostForm("stage")
	}
	if !store.ValidStage(stage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stage, must be one of: " + strings.Join(store.ContentStages, ", ")})
		return
	}

	var item store.ContentItem
	if err := s.d.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "content item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	item.Stage = stage
	if err := s.d.DB.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
