package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/docregistry/internal/db/models"
)

type DepartmentHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewDepartmentHandler(db *gorm.DB, logger *zap.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		db:     db,
		logger: logger.With(zap.String("handler", "department")),
	}
}

type departmentRequest struct {
	Name string `json:"name" binding:"required"`
}

func (dh *DepartmentHandler) Create(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Department name is required"})
		return
	}

	dept := models.Department{Name: req.Name}
	if err := dh.db.WithContext(c.Request.Context()).Create(&dept).Error; err != nil {
		dh.logger.Error("failed to create department", zap.String("name", req.Name), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"message": "Error creating department"})
		return
	}

	c.JSON(http.StatusCreated, dept)
}

func (dh *DepartmentHandler) List(c *gin.Context) {
	var depts []models.Department
	if err := dh.db.WithContext(c.Request.Context()).Order("name").Find(&depts).Error; err != nil {
		dh.logger.Error("failed to list departments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching departments"})
		return
	}
	c.JSON(http.StatusOK, depts)
}

func (dh *DepartmentHandler) GetByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid department id"})
		return
	}

	var dept models.Department
	err = dh.db.WithContext(c.Request.Context()).First(&dept, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Department not found"})
			return
		}
		dh.logger.Error("failed to fetch department", zap.Uint("department_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching department"})
		return
	}

	c.JSON(http.StatusOK, dept)
}

func (dh *DepartmentHandler) Update(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid department id"})
		return
	}

	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Department name is required"})
		return
	}

	res := dh.db.WithContext(c.Request.Context()).
		Model(&models.Department{}).
		Where("id = ?", id).
		Update("name", req.Name)
	if res.Error != nil {
		dh.logger.Error("failed to update department", zap.Uint("department_id", id), zap.Error(res.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating department"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Department not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Department updated successfully"})
}

func (dh *DepartmentHandler) Delete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid department id"})
		return
	}

	res := dh.db.WithContext(c.Request.Context()).Delete(&models.Department{}, id)
	if res.Error != nil {
		dh.logger.Error("failed to delete department", zap.Uint("department_id", id), zap.Error(res.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error deleting department"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Department not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Department deleted successfully"})
}
