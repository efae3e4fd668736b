package psql

import (
	"context"
	"fmt"

	"mineai/mineai/config"
	"mineai/mineai/sources/psql/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Database is the caller-scoped handle. Every conversation/message read and
// write goes through it, always filtered by the authenticated user's id, so
// the row-level ownership rules apply uniformly.
type Database struct {
	DB *gorm.DB
}

func NewDatabase(ctx context.Context, cfg config.Config) (*Database, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
	)

	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// the embedding column needs pgvector
	if err := db.WithContext(ctx).Exec(`CREATE EXTENSION IF NOT EXISTS vector`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable pgvector: %w", err)
	}

	// documents/document_chunks are owned by the ingestion pipeline and only
	// migrated here so a fresh dev database has the full schema.
	err = db.WithContext(ctx).AutoMigrate(
		&models.Conversation{},
		&models.Message{},
		&models.Document{},
		&models.DocumentChunk{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	return &Database{DB: db}, nil
}

func (db *Database) Close() {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}

// NewReadOnlyPool opens the elevated service credential used only for
// retrieval over document_chunks/documents. The DSN forces read-only
// transactions so this handle can never write, whatever code holds it.
func NewReadOnlyPool(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable options='-c default_transaction_read_only=on'",
		cfg.DBHost,
		cfg.DBPort,
		cfg.ServiceDBUser,
		cfg.ServiceDBPassword,
		cfg.DBName,
	)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
