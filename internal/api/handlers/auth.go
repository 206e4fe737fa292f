package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/docregistry/internal/api/middleware"
	"github.com/docregistry/internal/config"
	"github.com/docregistry/internal/db/models"
	"github.com/docregistry/internal/services"
	"github.com/docregistry/internal/utils"
)

type AuthHandler struct {
	users  *services.UserService
	access *services.AccessService
	tokens *services.TokenService
	db     *gorm.DB
	cfg    config.AuthConfig
	logger *zap.Logger
}

func NewAuthHandler(
	users *services.UserService,
	access *services.AccessService,
	tokens *services.TokenService,
	db *gorm.DB,
	cfg config.AuthConfig,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:  users,
		access: access,
		tokens: tokens,
		db:     db,
		cfg:    cfg,
		logger: logger.With(zap.String("handler", "auth")),
	}
}

type registerRequest struct {
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Address      string `json:"address"`
	PhoneNumber  string `json:"phoneNumber"`
	Affiliation  string `json:"affiliation"`
	Rank         string `json:"rank"`
	Position     string `json:"position"`
	ImageURL     string `json:"imageUrl"`
	DepartmentID uint   `json:"departmentId"`
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username, password and email are required"})
		return
	}

	if len(req.Password) < ah.cfg.PasswordMinLength || len(req.Password) > ah.cfg.PasswordMaxLength {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Password length out of bounds"})
		return
	}

	if _, err := ah.users.GetByUsername(c.Request.Context(), req.Username); err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "Username already exists"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		ah.logger.Error("failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error registering user"})
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Address:      req.Address,
		PhoneNumber:  req.PhoneNumber,
		Affiliation:  req.Affiliation,
		Rank:         req.Rank,
		Position:     req.Position,
		ImageURL:     req.ImageURL,
		DepartmentID: req.DepartmentID,
		ActiveStatus: true,
	}

	if err := ah.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		ah.logger.Error("failed to create user", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"message": "Error registering user"})
		return
	}

	ah.logger.Info("user registered",
		zap.String("username", user.Username),
		zap.Uint("user_id", user.ID))
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "userId": user.ID})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login runs after the rate-limit middleware: only attempts the tracker
// allowed reach this point. Every verification result is reported back so
// failures count toward throttling and success clears the record.
func (ah *AuthHandler) Login(c *gin.Context) {
	clientIP := c.ClientIP()

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password required"})
		return
	}

	user, err := ah.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		ah.reject(c, clientIP, "unknown username", req.Username)
		return
	}

	if !utils.VerifyPassword(user.PasswordHash, req.Password) {
		ah.reject(c, clientIP, "wrong password", req.Username)
		return
	}

	if !user.ActiveStatus {
		ah.reject(c, clientIP, "inactive account", req.Username)
		return
	}

	ah.access.ReportLoginOutcome(c.Request.Context(), clientIP, true)

	token, err := ah.tokens.Issue(user.ID)
	if err != nil {
		ah.logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error logging in"})
		return
	}

	ah.db.Model(user).Update("last_login", time.Now())
	c.JSON(http.StatusOK, gin.H{"token": token, "userId": user.ID})
}

func (ah *AuthHandler) reject(c *gin.Context, clientIP, cause, username string) {
	ah.logger.Warn("authentication failed",
		zap.String("cause", cause),
		zap.String("username", username),
		zap.String("client_ip", clientIP))
	ah.access.ReportLoginOutcome(c.Request.Context(), clientIP, false)
	// One generic message for all causes.
	c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication failed"})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

type updateProfileRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Address      string `json:"address"`
	PhoneNumber  string `json:"phoneNumber"`
	Affiliation  string `json:"affiliation"`
	Rank         string `json:"rank"`
	Position     string `json:"position"`
	ImageURL     string `json:"imageUrl"`
	DepartmentID uint   `json:"departmentId"`
}

func (ah *AuthHandler) UpdateProfile(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	updates := map[string]any{}
	if req.Username != "" {
		existing, err := ah.users.GetByUsername(c.Request.Context(), req.Username)
		if err == nil && existing.ID != p.ID {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists"})
			return
		}
		updates["username"] = req.Username
	}
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			ah.logger.Error("failed to hash password", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating user"})
			return
		}
		updates["password_hash"] = hash
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.PhoneNumber != "" {
		updates["phone_number"] = req.PhoneNumber
	}
	if req.Affiliation != "" {
		updates["affiliation"] = req.Affiliation
	}
	if req.Rank != "" {
		updates["rank"] = req.Rank
	}
	if req.Position != "" {
		updates["position"] = req.Position
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}
	if req.DepartmentID != 0 {
		updates["department_id"] = req.DepartmentID
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Nothing to update", "userId": p.ID})
		return
	}

	err := ah.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", p.ID).
		Updates(updates).Error
	if err != nil {
		ah.logger.Error("failed to update user", zap.Uint("user_id", p.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "userId": p.ID})
}

// ResetLoginBlock lets an operator clear the attempt record of a client,
// including a permanent block. Admin-gated in the router.
func (ah *AuthHandler) ResetLoginBlock(c *gin.Context) {
	clientKey := c.Param("client")
	if clientKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing client identity"})
		return
	}

	if err := ah.access.ClearClient(c.Request.Context(), clientKey); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "No record for client"})
			return
		}
		ah.logger.Error("failed to clear attempt record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error clearing record"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attempt record cleared"})
}
