package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"recruitops/internal/model"
	"recruitops/pkg/metrics"
)

type MilestoneRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMilestoneRepository(db *pgxpool.Pool, logger *zap.Logger) *MilestoneRepository {
	return &MilestoneRepository{
		db:     db,
		logger: logger,
	}
}

const milestoneColumns = `
    id, process_id, template_name, position, service_type,
    anchor_event, completion_event, duration_days, warning_days,
    start_at, due_on, completed_at, created_at
`

func scanMilestone(row pgx.Row, m *model.Milestone) error {
	return row.Scan(
		&m.ID,
		&m.ProcessID,
		&m.TemplateName,
		&m.Position,
		&m.ServiceType,
		&m.AnchorEvent,
		&m.CompletionEvent,
		&m.DurationDays,
		&m.WarningDays,
		&m.StartAt,
		&m.DueOn,
		&m.CompletedAt,
		&m.CreatedAt,
	)
}

// InsertPlan inserts a full plan in one transaction. The unique key on
// (process_id, template_name) plus ON CONFLICT DO NOTHING makes a repeat
// call a no-op success instead of a duplicate plan. Returns the number of
// rows actually inserted.
func (r *MilestoneRepository) InsertPlan(ctx context.Context, milestones []model.Milestone) (int, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("insert_plan", "milestones", time.Since(start)) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin plan transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO milestones (
            process_id, template_name, position, service_type,
            anchor_event, completion_event, duration_days, warning_days,
            start_at, due_on, completed_at, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULL, NOW())
        ON CONFLICT (process_id, template_name) DO NOTHING
    `

	inserted := 0
	for _, m := range milestones {
		tag, err := tx.Exec(ctx, query,
			m.ProcessID,
			m.TemplateName,
			m.Position,
			m.ServiceType,
			m.AnchorEvent,
			m.CompletionEvent,
			m.DurationDays,
			m.WarningDays,
			m.StartAt,
			m.DueOn,
		)
		if err != nil {
			r.logger.Error("Failed to insert milestone",
				zap.Int64("process_id", m.ProcessID),
				zap.String("template", m.TemplateName),
				zap.Error(err),
			)
			return 0, fmt.Errorf("failed to insert milestone %q: %w", m.TemplateName, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit plan: %w", err)
	}

	return inserted, nil
}

// ListUnstartedByAnchor returns the milestones of a process whose clock is
// anchored on the given event and has not started yet.
func (r *MilestoneRepository) ListUnstartedByAnchor(ctx context.Context, processID int64, event model.AnchorEvent) ([]model.Milestone, error) {
	query := `
        SELECT ` + milestoneColumns + `
        FROM milestones
        WHERE process_id = $1 AND anchor_event = $2 AND start_at IS NULL
        ORDER BY position ASC
    `

	rows, err := r.db.Query(ctx, query, processID, event)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var milestones []model.Milestone
	for rows.Next() {
		var m model.Milestone
		if err := scanMilestone(rows, &m); err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}

	return milestones, rows.Err()
}

// StartIfUnstarted sets start and due dates on a single milestone. The
// null check lives inside the UPDATE itself, so two concurrent callers
// cannot both win; the loser sees zero rows affected and moves on.
func (r *MilestoneRepository) StartIfUnstarted(ctx context.Context, id int64, startAt time.Time, dueOn time.Time) (bool, error) {
	query := `
        UPDATE milestones
        SET start_at = $1, due_on = $2
        WHERE id = $3 AND start_at IS NULL
    `
	tag, err := r.db.Exec(ctx, query, startAt, dueOn, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CompleteWhereTriggered marks done every still-open milestone of the
// process whose completion event matches. First write wins; repeats and
// concurrent duplicates fall through the completed_at IS NULL guard.
// Returns the number of milestones completed.
func (r *MilestoneRepository) CompleteWhereTriggered(ctx context.Context, processID int64, event model.AnchorEvent, at time.Time) (int, error) {
	query := `
        UPDATE milestones
        SET completed_at = $1
        WHERE process_id = $2 AND completion_event = $3 AND completed_at IS NULL
    `
	tag, err := r.db.Exec(ctx, query, at, processID, event)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ListByProcess returns the full plan of a process in template order.
func (r *MilestoneRepository) ListByProcess(ctx context.Context, processID int64) ([]model.Milestone, error) {
	query := `
        SELECT ` + milestoneColumns + `
        FROM milestones
        WHERE process_id = $1
        ORDER BY position ASC
    `

	rows, err := r.db.Query(ctx, query, processID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var milestones []model.Milestone
	for rows.Next() {
		var m model.Milestone
		if err := scanMilestone(rows, &m); err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}

	return milestones, rows.Err()
}

// ListOpen returns every open milestone joined with its process owner,
// optionally filtered to one consultant. nil means all consultants (the
// administrator view).
func (r *MilestoneRepository) ListOpen(ctx context.Context, consultantID *int64) ([]model.MilestoneWithOwner, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQueryDuration("list_open", "milestones", time.Since(start)) }()

	query := `
        SELECT
            m.id, m.process_id, m.template_name, m.position, m.service_type,
            m.anchor_event, m.completion_event, m.duration_days, m.warning_days,
            m.start_at, m.due_on, m.completed_at, m.created_at,
            p.consultant_id
        FROM milestones m
        JOIN processes p ON p.id = m.process_id
        WHERE m.completed_at IS NULL
          AND ($1::bigint IS NULL OR p.consultant_id = $1)
        ORDER BY m.process_id ASC, m.position ASC
    `

	rows, err := r.db.Query(ctx, query, consultantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MilestoneWithOwner
	for rows.Next() {
		var m model.MilestoneWithOwner
		if err := rows.Scan(
			&m.ID,
			&m.ProcessID,
			&m.TemplateName,
			&m.Position,
			&m.ServiceType,
			&m.AnchorEvent,
			&m.CompletionEvent,
			&m.DurationDays,
			&m.WarningDays,
			&m.StartAt,
			&m.DueOn,
			&m.CompletedAt,
			&m.CreatedAt,
			&m.ConsultantID,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}
