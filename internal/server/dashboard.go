package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clipstudio/internal/store"
)

func (s *Server) createKPI(c *gin.Context) {
	var rec store.KPI
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec.ID = 0
	if err := s.d.DB.Create(&rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) listKPIs(c *gin.Context) {
	offset, limit := pageParams(c)
	var recs []store.KPI
	if err := s.d.DB.Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) createFinance(c *gin.Context) {
	var rec store.Finance
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec.ID = 0
	if err := s.d.DB.Create(&rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) listFinances(c *gin.Context) {
	offset, limit := pageParams(c)
	var recs []store.Finance
	if err := s.d.DB.Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) createHabit(c *gin.Context) {
	var rec store.Habit
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec.ID = 0
	if err := s.d.DB.Create(&rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) listHabits(c *gin.Context) {
	offset, limit := pageParams(c)
	var recs []store.Habit
	if err := s.d.DB.Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, recs)
}
