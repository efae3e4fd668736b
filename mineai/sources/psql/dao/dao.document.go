package dao

import (
	"context"
	"errors"

	"mineai/mineai/sources/psql/models"

	"gorm.io/gorm"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentDAO only reads; documents are written by the ingestion pipeline.
type DocumentDAO struct {
	DB *gorm.DB
}

func NewDocumentDAO(db *gorm.DB) *DocumentDAO {
	return &DocumentDAO{DB: db}
}

func (dao *DocumentDAO) List(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	err := dao.DB.WithContext(ctx).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (dao *DocumentDAO) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := dao.DB.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
