package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"recruitops/internal/model"
)

type ProcessRepository struct {
	db *pgxpool.Pool
}

func NewProcessRepository(db *pgxpool.Pool) *ProcessRepository {
	return &ProcessRepository{db: db}
}

// FindMeta reads the slice of an external process row this engine needs.
// Returns (nil, nil) when the process does not exist; the caller decides
// whether that is worth a warning.
func (r *ProcessRepository) FindMeta(ctx context.Context, id int64) (*model.ProcessMeta, error) {
	query := `
        SELECT id, service_type, consultant_id, started_on
        FROM processes
        WHERE id = $1
    `
	var p model.ProcessMeta
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.ServiceType,
		&p.ConsultantID,
		&p.StartedOn,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
