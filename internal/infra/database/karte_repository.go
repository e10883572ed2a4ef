package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/naileon/karte-api/internal/entity"
)

const serviceName = "postgres"

const createKartesTable = `
	CREATE TABLE IF NOT EXISTS kartes (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL UNIQUE,
		data       JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// KarteRepository stores kartes in Postgres. The UNIQUE constraint on
// user_id turns a lost create race into entity.ErrDuplicateKarte.
type KarteRepository struct {
	DB *sql.DB
}

func NewKarteRepository(db *sql.DB) *KarteRepository {
	return &KarteRepository{DB: db}
}

func (r *KarteRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, createKartesTable); err != nil {
		return fmt.Errorf("create kartes table: %w", err)
	}
	return nil
}

func (r *KarteRepository) FindByUserID(ctx context.Context, userID string) (*entity.KarteRecord, error) {
	query := `
		SELECT id, data
		FROM kartes
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var (
		rec  entity.KarteRecord
		data []byte
	)
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&rec.ID, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrKarteNotFound
	}
	if err != nil {
		return nil, &entity.UpstreamError{Service: serviceName, Err: err}
	}

	if err := json.Unmarshal(data, &rec.Karte); err != nil {
		return nil, &entity.UpstreamError{Service: serviceName, Err: fmt.Errorf("decode karte %s: %w", rec.ID, err)}
	}
	return &rec, nil
}

func (r *KarteRepository) Create(ctx context.Context, k *entity.Karte) (string, error) {
	query := `
		INSERT INTO kartes (id, user_id, data, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`

	data, err := json.Marshal(k)
	if err != nil {
		return "", fmt.Errorf("encode karte: %w", err)
	}

	id := uuid.NewString()
	if _, err := r.DB.ExecContext(ctx, query, id, k.UserID, string(data)); err != nil {
		if isUniqueViolation(err) {
			return "", entity.ErrDuplicateKarte
		}
		return "", &entity.UpstreamError{Service: serviceName, Err: err}
	}
	return id, nil
}

// Update merges the writable fields into the stored document, keeping
// userId and timestamp as they were at creation.
func (r *KarteRepository) Update(ctx context.Context, recordID string, k *entity.Karte) error {
	query := `
		UPDATE kartes
		SET data = data || $2::jsonb,
		    updated_at = NOW()
		WHERE id = $1
	`

	data, err := writableJSON(k)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx, query, recordID, string(data))
	if err != nil {
		return &entity.UpstreamError{Service: serviceName, Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entity.ErrKarteNotFound
	}
	return nil
}

func writableJSON(k *entity.Karte) ([]byte, error) {
	raw, err := json.Marshal(k)
	if err != nil {
		return nil, fmt.Errorf("encode karte: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode karte: %w", err)
	}
	delete(fields, "userId")
	delete(fields, "timestamp")
	return json.Marshal(fields)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
