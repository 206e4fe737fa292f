package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/docregistry/internal/api/middleware"
	"github.com/docregistry/internal/authz"
	"github.com/docregistry/internal/db/models"
	"github.com/docregistry/internal/services"
)

type CommentHandler struct {
	db     *gorm.DB
	access *services.AccessService
	logger *zap.Logger
}

func NewCommentHandler(db *gorm.DB, access *services.AccessService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		db:     db,
		access: access,
		logger: logger.With(zap.String("handler", "comment")),
	}
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

// Create attaches a comment to a document. Commenting requires read
// access to the document itself.
func (ch *CommentHandler) Create(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	documentID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid document id"})
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Comment content is required"})
		return
	}

	if err := ch.access.Authorize(c.Request.Context(), p, documentID, authz.OpRead); err != nil {
		ch.respondDenied(c, err)
		return
	}

	comment := models.Comment{
		Content:    req.Content,
		AuthorID:   p.ID,
		DocumentID: documentID,
	}
	if err := ch.db.WithContext(c.Request.Context()).Create(&comment).Error; err != nil {
		ch.logger.Error("failed to create comment", zap.Uint("document_id", documentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error creating comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListForDocument returns the comments of a document the principal can read.
func (ch *CommentHandler) ListForDocument(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)

	documentID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid document id"})
		return
	}

	if err := ch.access.Authorize(c.Request.Context(), p, documentID, authz.OpRead); err != nil {
		ch.respondDenied(c, err)
		return
	}

	var comments []models.Comment
	err = ch.db.WithContext(c.Request.Context()).
		Preload("Author").
		Where("document_id = ?", documentID).
		Order("created_at").
		Find(&comments).Error
	if err != nil {
		ch.logger.Error("failed to list comments", zap.Uint("document_id", documentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching comments"})
		return
	}

	c.JSON(http.StatusOK, comments)
}

// Update edits a comment. Only the author or an admin may do it; the
// admin capability moderates comments independent of rank.
func (ch *CommentHandler) Update(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	commentID, err := parseID(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid comment id"})
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Comment content is required"})
		return
	}

	comment, err := ch.ownedComment(c, commentID, p)
	if err != nil {
		return
	}

	comment.Content = req.Content
	if err := ch.db.WithContext(c.Request.Context()).Save(comment).Error; err != nil {
		ch.logger.Error("failed to update comment", zap.Uint("comment_id", commentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating comment"})
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (ch *CommentHandler) Delete(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	commentID, err := parseID(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid comment id"})
		return
	}

	comment, err := ch.ownedComment(c, commentID, p)
	if err != nil {
		return
	}

	if err := ch.db.WithContext(c.Request.Context()).Delete(comment).Error; err != nil {
		ch.logger.Error("failed to delete comment", zap.Uint("comment_id", commentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error deleting comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// ownedComment loads the comment and enforces author-or-admin. It writes
// the response on failure and returns a non-nil error so callers bail out.
func (ch *CommentHandler) ownedComment(c *gin.Context, commentID uint, p authz.Principal) (*models.Comment, error) {
	var comment models.Comment
	err := ch.db.WithContext(c.Request.Context()).First(&comment, commentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Comment not found"})
			return nil, err
		}
		ch.logger.Error("failed to fetch comment", zap.Uint("comment_id", commentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching comment"})
		return nil, err
	}

	if comment.AuthorID != p.ID && !p.Admin {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to modify this comment"})
		return nil, services.ErrNotAuthorized
	}

	return &comment, nil
}

func (ch *CommentHandler) respondDenied(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Document not found"})
	case errors.Is(err, services.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to view this document"})
	default:
		ch.logger.Error("comment request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal error"})
	}
}
