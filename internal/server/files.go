package server

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"clipstudio/internal/storage"
)

func (s *Server) listFiles(c *gin.Context) {
	files, err := s.d.Files.List(c.Query("file_type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if files == nil {
		files = []storage.FileInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (s *Server) downloadFile(c *gin.Context) {
	path, ok := s.d.Files.Resolve(c.Param("filename"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (s *Server) deleteFile(c *gin.Context) {
	name := c.Param("filename")
	if err := s.d.Files.Delete(name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": name})
}

// status reports a health snapshot: uptime, db reachability and the host
// resources backing the storage directories.
func (s *Server) status(c *gin.Context) {
	ctx := c.Request.Context()

	dbStatus := "ok"
	if sqlDB, err := s.d.DB.DB(); err != nil {
		dbStatus = err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = err.Error()
	}

	payload := gin.H{
		"status":  "ok",
		"version": s.d.Version,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"db":      dbStatus,
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		payload["memory"] = gin.H{
			"total":        vm.Total,
			"used":         vm.Used,
			"used_percent": vm.UsedPercent,
		}
	}
	if du, err := disk.UsageWithContext(ctx, s.d.Files.Uploads()); err == nil {
		payload["disk"] = gin.H{
			"total":        du.Total,
			"free":         du.Free,
			"used_percent": du.UsedPercent,
		}
	}
	c.JSON(http.StatusOK, payload)
}
