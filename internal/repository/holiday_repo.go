package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"recruitops/internal/model"
)

type HolidayRepository struct {
	db *pgxpool.Pool
}

func NewHolidayRepository(db *pgxpool.Pool) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// ListAll returns every holiday on record. The table is small and
// read-mostly; the calendar directory caches the result between refreshes.
func (r *HolidayRepository) ListAll(ctx context.Context) ([]model.Holiday, error) {
	query := `
        SELECT day, COALESCE(name, '')
        FROM holidays
        ORDER BY day ASC
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []model.Holiday
	for rows.Next() {
		var h model.Holiday
		if err := rows.Scan(&h.Day, &h.Name); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}

	return holidays, rows.Err()
}
