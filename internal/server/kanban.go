package server

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clipstudio/internal/store"
)

func (s *Server) createBoard(c *gin.Context) {
	var b store.KanbanBoard
	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b.ID = 0
	b.Columns = nil
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	if err := s.d.DB.Create(&b).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (s *Server) listBoards(c *gin.Context) {
	var boards []store.KanbanBoard
	if err := s.d.DB.Find(&boards).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, boards)
}

// getBoard returns one board with its full column/card/label graph, columns
// and cards sorted by their order fields.
func (s *Server) getBoard(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid board id"})
		return
	}

	var b store.KanbanBoard
	err = s.d.DB.
		Preload("Columns.Cards.Labels.Label").
		First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "board not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sort.Slice(b.Columns, func(i, j int) bool { return b.Columns[i].Order < b.Columns[j].Order })
	for ci := range b.Columns {
		cards := b.Columns[ci].Cards
		sort.Slice(cards, func(i, j int) bool { return cards[i].Order < cards[j].Order })
	}
	c.JSON(http.StatusOK, b)
}

// deleteBoard removes a board and everything hanging off it. The cascade is
// explicit because sqlite does not enforce the foreign keys by default.
func (s *Server) deleteBoard(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid board id"})
		return
	}

	var b store.KanbanBoard
	if err := s.d.DB.Preload("Columns.Cards").First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "board not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	err = s.d.DB.Transaction(func(tx *gorm.DB) error {
		for _, col := range b.Columns {
			for _, card := range col.Cards {
				if err := tx.Where("card_id = ?", card.ID).Delete(&store.CardLabel{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("column_id = ?", col.ID).Delete(&store.KanbanCard{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("board_id = ?", b.ID).Delete(&store.KanbanColumn{}).Error; err != nil {
			return err
		}
		return tx.Delete(&b).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": b.ID})
}

func (s *Server) createColumn(c *gin.Context) {
	var col store.KanbanColumn
	if err := c.ShouldBindJSON(&col); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	col.ID = 0
	col.Cards = nil
	if !s.requireRow(c, &store.KanbanBoard{}, col.BoardID, "board") {
		return
	}
	if err := s.d.DB.Create(&col).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, col)
}

func (s *Server) createCard(c *gin.Context) {
	var card store.KanbanCard
	if err := c.ShouldBindJSON(&card); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	card.ID = 0
	card.Labels = nil
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now()
	}
	if !s.requireRow(c, &store.KanbanColumn{}, card.ColumnID, "column") {
		return
	}
	if err := s.d.DB.Create(&card).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, card)
}

// moveCard reassigns a card to a column at a position.
func (s *Server) moveCard(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return
	}
	var req struct {
		ColumnID uint `json:"column_id"`
		Order    int  `json:"order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var card store.KanbanCard
	if err := s.d.DB.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !s.requireRow(c, &store.KanbanColumn{}, req.ColumnID, "column") {
		return
	}

	card.ColumnID = req.ColumnID
	card.Order = req.Order
	if err := s.d.DB.Save(&card).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}

func (s *Server) attachLabel(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return
	}
	var req struct {
		LabelID uint `json:"label_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !s.requireRow(c, &store.KanbanCard{}, uint(id), "card") {
		return
	}
	var label store.Label
	if err := s.d.DB.First(&label, req.LabelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "label not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	cl := store.CardLabel{CardID: uint(id), LabelID: label.ID}
	if err := s.d.DB.Create(&cl).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	cl.Label = label
	c.JSON(http.StatusCreated, cl)
}

func (s *Server) createLabel(c *gin.Context) {
	var l store.Label
	if err := c.ShouldBindJSON(&l); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l.ID = 0
	if l.Color == "" {
		l.Color = "#cccccc"
	}
	if err := s.d.DB.Create(&l).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (s *Server) listLabels(c *gin.Context) {
	var labels []store.Label
	if err := s.d.DB.Find(&labels).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, labels)
}

// requireRow 404s when the row with the given id is missing, 500s on other
// lookup failures. The caller stops either way when it returns false.
func (s *Server) requireRow(c *gin.Context, model any, id uint, what string) bool {
	if err := s.d.DB.First(model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return false
	}
	return true
}
