package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/docregistry/internal/authz"
	"github.com/docregistry/internal/db/models"
)

type DocumentService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewDocumentService(db *gorm.DB, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		db:     db,
		logger: logger.With(zap.String("service", "document_service")),
	}
}

// GetAuthFields fetches only the fields the policy evaluator needs,
// avoiding a full row read on the authorization path.
func (ds *DocumentService) GetAuthFields(ctx context.Context, id uint) (authz.DocumentFields, error) {
	var doc models.Document
	err := ds.db.WithContext(ctx).
		Select("document_type", "confidentiality", "department_id").
		First(&doc, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.DocumentFields{}, ErrNotFound
		}
		return authz.DocumentFields{}, err
	}
	return doc.AuthFields(), nil
}

func (ds *DocumentService) Get(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	err := ds.db.WithContext(ctx).
		Preload("SenderUnit").
		Preload("ReceiverUnit").
		Preload("Department").
		First(&doc, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// ListForPrincipal returns the candidate set a principal may list. The
// prefilter narrows the query per role; read-time evaluation stays the
// authority on individual documents (its staff cutoff is stricter than
// this filter for TOP_SECRET).
func (ds *DocumentService) ListForPrincipal(ctx context.Context, p authz.Principal) ([]models.Document, error) {
	q := ds.db.WithContext(ctx).Order("created_at DESC")

	switch {
	case p.Role.AtLeast(authz.RoleAssistantDirector):
		// Organization-wide visibility, no filter.
	case p.Role.AtLeast(authz.RoleDeputyDepartmentHead):
		q = q.Where("department_id = ?", p.DepartmentID)
	case p.Role == authz.RoleStaff:
		q = q.Where("department_id = ? AND confidentiality IN ?",
			p.DepartmentID,
			[]authz.ConfidentialityLevel{authz.ConfidentialityGeneral, authz.ConfidentialityConfidential})
	default:
		q = q.Where("document_type = ? AND confidentiality = ?",
			authz.TypePublicity, authz.ConfidentialityGeneral)
	}

	var docs []models.Document
	if err := q.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// ListPublic returns the documents visible without authentication.
func (ds *DocumentService) ListPublic(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	err := ds.db.WithContext(ctx).
		Where("document_type = ? AND confidentiality = ?",
			authz.TypePublicity, authz.ConfidentialityGeneral).
		Preload("SenderUnit").
		Preload("ReceiverUnit").
		Preload("Department").
		Order("received_date DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (ds *DocumentService) Create(ctx context.Context, doc *models.Document) error {
	if err := ds.db.WithContext(ctx).Create(doc).Error; err != nil {
		return err
	}
	ds.logger.Info("document created",
		zap.Uint("document_id", doc.ID),
		zap.String("type", string(doc.DocumentType)),
		zap.String("confidentiality", string(doc.Confidentiality)),
		zap.Uint("department_id", doc.DepartmentID))
	return nil
}

func (ds *DocumentService) Update(ctx context.Context, doc *models.Document) error {
	return ds.db.WithContext(ctx).Save(doc).Error
}

func (ds *DocumentService) Delete(ctx context.Context, id uint) error {
	res := ds.db.WithContext(ctx).Delete(&models.Document{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
