// Package server exposes the processing workers, the production-tracking
// records and file storage over HTTP.
package server

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clipstudio/internal/domain/timeline"
	"clipstudio/internal/storage"
	"clipstudio/internal/workers"
)

// Deps carries the collaborators every handler group needs.
type Deps struct {
	Workers workers.Workers
	Files   *storage.Store
	DB      *gorm.DB
	Version string
	Log     *slog.Logger
}

type Server struct {
	d       Deps
	started time.Time
}

func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Version == "" {
		d.Version = "dev"
	}
	return &Server{d: d, started: time.Now()}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware for development
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.d.Log.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond).String(),
		)
	})

	w := r.Group("/workers")
	{
		w.POST("/cut-profile", s.cutProfile)
		w.POST("/video-cutter", s.videoCutter)
		w.POST("/silence-remover", s.silenceRemover)
		w.POST("/satisfy", s.satisfy)
		w.POST("/renderer", s.renderer)
		w.POST("/subtitles", s.subtitles)
		w.POST("/overlay", s.overlay)
	}

	d := r.Group("/dashboard")
	{
		d.POST("/kpis", s.createKPI)
		d.GET("/kpis", s.listKPIs)
		d.POST("/finances", s.createFinance)
		d.GET("/finances", s.listFinances)
		d.POST("/habits", s.createHabit)
		d.GET("/habits", s.listHabits)
	}

	t := r.Group("/tasks")
	{
		t.POST("", s.createTask)
		t.GET("", s.listTasks)
		t.POST("/work-sessions", s.createWorkSession)
		t.GET("/work-sessions", s.listWorkSessions)
		t.POST("/content", s.createContentItem)
		t.PUT("/content/:id/stage", s.updateContentStage)
	}

	k := r.Group("/kanban")
	{
		k.POST("/boards", s.createBoard)
		k.GET("/boards", s.listBoards)
		k.GET("/boards/:id", s.getBoard)
		k.DELETE("/boards/:id", s.deleteBoard)
		k.POST("/columns", s.createColumn)
		k.POST("/cards", s.createCard)
		k.POST("/cards/:id/move", s.moveCard)
		k.POST("/cards/:id/labels", s.attachLabel)
		k.POST("/labels", s.createLabel)
		k.GET("/labels", s.listLabels)
	}

	r.GET("/files", s.listFiles)
	r.GET("/files/:filename", s.downloadFile)
	r.DELETE("/files/:filename", s.deleteFile)

	r.GET("/status", s.status)

	return r
}

// respondError maps the error kinds of the processing pipeline onto HTTP
// statuses: bad request input 400, nothing-to-output 422, missing file 404,
// everything else (tool failures included) 500.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, timeline.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, timeline.ErrEmptyTimeline):
		return http.StatusUnprocessableEntity
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func pageParams(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 100
	}
	return offset, limit
}
