package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/docregistry/internal/db/models"
)

type UnitHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUnitHandler(db *gorm.DB, logger *zap.Logger) *UnitHandler {
	return &UnitHandler{
		db:     db,
		logger: logger.With(zap.String("handler", "unit")),
	}
}

type unitRequest struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
}

func (uh *UnitHandler) Create(c *gin.Context) {
	var req unitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unit name is required"})
		return
	}

	unit := models.Unit{
		Name:        req.Name,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
	}
	if err := uh.db.WithContext(c.Request.Context()).Create(&unit).Error; err != nil {
		uh.logger.Error("failed to create unit", zap.String("name", req.Name), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"message": "Error creating unit"})
		return
	}

	c.JSON(http.StatusCreated, unit)
}

func (uh *UnitHandler) List(c *gin.Context) {
	var units []models.Unit
	if err := uh.db.WithContext(c.Request.Context()).Order("name").Find(&units).Error; err != nil {
		uh.logger.Error("failed to list units", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching units"})
		return
	}
	c.JSON(http.StatusOK, units)
}

func (uh *UnitHandler) GetByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid unit id"})
		return
	}

	var unit models.Unit
	err = uh.db.WithContext(c.Request.Context()).First(&unit, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Unit not found"})
			return
		}
		uh.logger.Error("failed to fetch unit", zap.Uint("unit_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching unit"})
		return
	}

	c.JSON(http.StatusOK, unit)
}

func (uh *UnitHandler) Update(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid unit id"})
		return
	}

	var req unitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unit name is required"})
		return
	}

	updates := map[string]any{
		"name":         req.Name,
		"address":      req.Address,
		"phone_number": req.PhoneNumber,
	}
	res := uh.db.WithContext(c.Request.Context()).
		Model(&models.Unit{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		uh.logger.Error("failed to update unit", zap.Uint("unit_id", id), zap.Error(res.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating unit"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Unit not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unit updated successfully"})
}

func (uh *UnitHandler) Delete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid unit id"})
		return
	}

	res := uh.db.WithContext(c.Request.Context()).Delete(&models.Unit{}, id)
	if res.Error != nil {
		uh.logger.Error("failed to delete unit", zap.Uint("unit_id", id), zap.Error(res.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error deleting unit"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Unit not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unit deleted successfully"})
}
