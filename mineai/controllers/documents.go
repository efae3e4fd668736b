// mineai/controllers/documents.go
package controllers

import (
	"context"
	"errors"

	"mineai/mineai/sources/psql/models"
)

var ErrNoStoredFile = errors.New("document has no stored file")

type DocumentRepo interface {
	List(ctx context.Context) ([]models.Document, error)
	GetByID(ctx context.Context, id string) (*models.Document, error)
}

type FileStore interface {
	PresignedDownloadURL(ctx context.Context, key string) (string, error)
}

// DocumentController exposes the knowledge base read-only: the ingestion
// pipeline owns all writes to documents and their chunks.
type DocumentController struct {
	docDAO DocumentRepo
	store  FileStore
}

func NewDocumentController(docDAO DocumentRepo, store FileStore) *DocumentController {
	return &DocumentController{docDAO: docDAO, store: store}
}

func (c *DocumentController) List(ctx context.Context) ([]models.Document, error) {
	return c.docDAO.List(ctx)
}

// FileURL resolves a presigned download link for the original PDF.
func (c *DocumentController) FileURL(ctx context.Context, documentID string) (string, error) {
	doc, err := c.docDAO.GetByID(ctx, documentID)
	if err != nil {
		return "", err
	}
	if doc.StorageKey == "" {
		return "", ErrNoStoredFile
	}
	return c.store.PresignedDownloadURL(ctx, doc.StorageKey)
}
