package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docregistry/internal/api/middleware"
	"github.com/docregistry/internal/authz"
	"github.com/docregistry/internal/db/models"
	"github.com/docregistry/internal/services"
)

type DocumentHandler struct {
	docs   *services.DocumentService
	access *services.AccessService
	logger *zap.Logger
}

func NewDocumentHandler(docs *services.DocumentService, access *services.AccessService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		docs:   docs,
		access: access,
		logger: logger.With(zap.String("handler", "document")),
	}
}

// Upload registers a new document. The invariant check runs before
// anything is written: publicity documents may only be general.
func (h *DocumentHandler) Upload(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	title := c.PostForm("title")
	docType := authz.DocumentType(c.PostForm("documentType"))
	confidentiality := authz.ConfidentialityLevel(c.PostForm("confidentiality"))

	if title == "" || !docType.Valid() || !confidentiality.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	if err := h.access.ValidateNewDocument(docType, confidentiality); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	departmentID, err := strconv.ParseUint(c.PostForm("departmentId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing department"})
		return
	}

	receivedDate, err := time.Parse("2006-01-02", c.PostForm("receivedDate"))
	if err != nil {
		receivedDate = time.Now()
	}
	senderUnitID, _ := strconv.ParseUint(c.PostForm("senderUnitId"), 10, 64)
	receiverUnitID, _ := strconv.ParseUint(c.PostForm("receiverUnitId"), 10, 64)

	doc := models.Document{
		Title:           title,
		Description:     c.PostForm("description"),
		DocumentNumber:  c.PostForm("documentNumber"),
		DocumentType:    docType,
		Confidentiality: confidentiality,
		ReceivedDate:    receivedDate,
		SenderUnitID:    uint(senderUnitID),
		ReceiverUnitID:  uint(receiverUnitID),
		UserID:          p.ID,
		DepartmentID:    uint(departmentID),
	}

	// File bytes go to the blob store out of band; only the assigned
	// path and the declared type are recorded here.
	if fileHeader, err := c.FormFile("file"); err == nil {
		doc.FilePath = "uploads/documents/" + uuid.New().String() + filepath.Ext(fileHeader.Filename)
		doc.FileType = fileHeader.Header.Get("Content-Type")
	}

	if err := h.docs.Create(c.Request.Context(), &doc); err != nil {
		h.logger.Error("failed to create document", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error uploading document"})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// List returns the candidate set the principal's role may see. Individual
// reads still go through the stricter read-time evaluation.
func (h *DocumentHandler) List(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	docs, err := h.docs.ListForPrincipal(c.Request.Context(), p)
	if err != nil {
		h.logger.Error("failed to list documents", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching documents"})
		return
	}

	c.JSON(http.StatusOK, docs)
}

func (h *DocumentHandler) GetByID(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid document id"})
		return
	}

	if err := h.access.Authorize(c.Request.Context(), p, id, authz.OpRead); err != nil {
		h.respondDenied(c, err, "Not authorized to view this document")
		return
	}

	doc, err := h.docs.Get(c.Request.Context(), id)
	if err != nil {
		h.respondDenied(c, err, "")
		return
	}

	c.JSON(http.StatusOK, doc)
}

type updateDocumentRequest struct {
	Title           string                     `json:"title"`
	Description     string                     `json:"description"`
	DocumentNumber  string                     `json:"documentNumber"`
	DocumentType    authz.DocumentType         `json:"documentType"`
	Confidentiality authz.ConfidentialityLevel `json:"confidentiality"`
	ReceivedDate    string                     `json:"receivedDate"`
	SenderUnitID    uint                       `json:"senderUnitId"`
	ReceiverUnitID  uint                       `json:"receiverUnitId"`
	DepartmentID    uint                       `json:"departmentId"`
}

func (h *DocumentHandler) Update(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid document id"})
		return
	}

	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	err = h.access.AuthorizeUpdate(c.Request.Context(), p, id, req.Title, req.DocumentType, req.Confidentiality)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields), errors.Is(err, services.ErrInvariantViolation):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			h.respondDenied(c, err, "Not authorized to update this document")
		}
		return
	}

	doc, err := h.docs.Get(c.Request.Context(), id)
	if err != nil {
		h.respondDenied(c, err, "")
		return
	}

	doc.Title = req.Title
	doc.Description = req.Description
	doc.DocumentNumber = req.DocumentNumber
	doc.DocumentType = req.DocumentType
	doc.Confidentiality = req.Confidentiality
	doc.SenderUnitID = req.SenderUnitID
	doc.ReceiverUnitID = req.ReceiverUnitID
	if req.DepartmentID != 0 {
		doc.DepartmentID = req.DepartmentID
	}
	if t, err := time.Parse("2006-01-02", req.ReceivedDate); err == nil {
		doc.ReceivedDate = t
	}

	if err := h.docs.Update(c.Request.Context(), doc); err != nil {
		h.logger.Error("failed to update document", zap.Uint("document_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating document"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid document id"})
		return
	}

	if err := h.access.Authorize(c.Request.Context(), p, id, authz.OpDelete); err != nil {
		h.respondDenied(c, err, "Not authorized to delete this document")
		return
	}

	if err := h.docs.Delete(c.Request.Context(), id); err != nil {
		h.respondDenied(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}

type publicDocument struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	DocumentNumber string    `json:"documentNumber"`
	ReceivedDate   time.Time `json:"receivedDate"`
	SenderUnit     string    `json:"senderUnit,omitempty"`
	ReceiverUnit   string    `json:"receiverUnit,omitempty"`
	Department     string    `json:"department,omitempty"`
}

// ListPublic serves the unauthenticated view: publicity documents with
// general confidentiality only, with a trimmed field set.
func (h *DocumentHandler) ListPublic(c *gin.Context) {
	docs, err := h.docs.ListPublic(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list public documents", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching public documents"})
		return
	}

	out := make([]publicDocument, len(docs))
	for i, d := range docs {
		out[i] = publicDocument{
			ID:             d.ID,
			Title:          d.Title,
			Description:    d.Description,
			DocumentNumber: d.DocumentNumber,
			ReceivedDate:   d.ReceivedDate,
		}
		if d.SenderUnit != nil {
			out[i].SenderUnit = d.SenderUnit.Name
		}
		if d.ReceiverUnit != nil {
			out[i].ReceiverUnit = d.ReceiverUnit.Name
		}
		if d.Department != nil {
			out[i].Department = d.Department.Name
		}
	}

	c.JSON(http.StatusOK, out)
}

// respondDenied maps gateway errors onto boundary responses. The message
// never says which policy rule fired.
func (h *DocumentHandler) respondDenied(c *gin.Context, err error, deniedMessage string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Document not found"})
	case errors.Is(err, services.ErrNotAuthorized):
		if deniedMessage == "" {
			deniedMessage = "Not authorized"
		}
		c.JSON(http.StatusForbidden, gin.H{"message": deniedMessage})
	default:
		h.logger.Error("document request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal error"})
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
