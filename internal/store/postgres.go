package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akikodev/deals-scraper/internal/models"
)

type Config struct {
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	MaxConnLife time.Duration
	MaxConnIdle time.Duration
}

// Postgres stores each product as a JSONB document so the merge upsert is a
// single `doc || incoming` expression, atomic per row.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, cfg Config) (*Postgres, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLife
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdle

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Close() {
	s.pool.Close()
}

// EnsureSchema creates the products table if it does not exist yet.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS products (
			asin       TEXT PRIMARY KEY,
			doc        JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Upsert merges the partial record into the stored document. The creation
// timestamp survives later writes; last_updated is refreshed on every one.
func (s *Postgres) Upsert(ctx context.Context, rec models.ProductRecord) error {
	if rec.ASIN == "" {
		return ErrMissingASIN
	}

	now := time.Now().UTC()
	rec.LastUpdated = &now
	if rec.Timestamp == nil {
		rec.Timestamp = &now
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	query := `
		INSERT INTO products (asin, doc)
		VALUES ($1, $2)
		ON CONFLICT (asin) DO UPDATE SET
			doc = products.doc || (EXCLUDED.doc - 'timestamp'),
			updated_at = now()`

	if _, err := s.pool.Exec(ctx, query, rec.ASIN, doc); err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", rec.ASIN, err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, asin string) (models.ProductRecord, bool, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM products WHERE asin = $1`, asin).Scan(&doc)
	if err == pgx.ErrNoRows {
		return models.ProductRecord{}, false, nil
	}
	if err != nil {
		return models.ProductRecord{}, false, fmt.Errorf("failed to get product %s: %w", asin, err)
	}

	var rec models.ProductRecord
	if err := json.Unmarshal(doc, &rec); err != nil {
		return models.ProductRecord{}, false, fmt.Errorf("failed to unmarshal product %s: %w", asin, err)
	}
	return rec, true, nil
}

func (s *Postgres) UnprocessedImages(ctx context.Context, limit int) ([]models.ProductRecord, error) {
	query := `
		SELECT doc FROM products
		WHERE doc ? 'image_url'
		  AND NOT COALESCE((doc->>'image_uploaded')::boolean, false)
		ORDER BY updated_at ASC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed images: %w", err)
	}
	defer rows.Close()

	var records []models.ProductRecord
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		var rec models.ProductRecord
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal product: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
