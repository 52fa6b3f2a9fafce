package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/campus-market/internal/domain/report/entity"
)

const reportColumns = `id, kind, reason, reported_by, target_id, status, created_at, updated_at`

// ReportPostgres implements report repository for PostgreSQL, scoped to one kind
type ReportPostgres struct {
	pool *pgxpool.Pool
	kind entity.Kind
}

// NewReportPostgres creates a new PostgreSQL report repository for kind
func NewReportPostgres(pool *pgxpool.Pool, kind entity.Kind) *ReportPostgres {
	return &ReportPostgres{pool: pool, kind: kind}
}

// Create inserts a new report and assigns its ID
func (r *ReportPostgres) Create(ctx context.Context, rep *entity.Report) error {
	query := `
		INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	id := uuid.New().String()
	_, err := r.pool.Exec(ctx, query,
		id,
		string(r.kind),
		rep.Reason,
		rep.ReportedBy,
		rep.TargetID,
		string(rep.Status),
		rep.CreatedAt,
		rep.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}

	rep.ID = id
	rep.Kind = r.kind
	return nil
}

// List retrieves every report of the repository's kind, oldest first
func (r *ReportPostgres) List(ctx context.Context) ([]entity.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE kind = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, string(r.kind))
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var reports []entity.Report
	for rows.Next() {
		rep, err := scanReportRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}
	return reports, nil
}

// SetStatus updates a report's moderation state
func (r *ReportPostgres) SetStatus(ctx context.Context, id string, status entity.Status, at time.Time) (*entity.Report, error) {
	query := `
		UPDATE reports SET status = $3, updated_at = $4
		WHERE id = $1 AND kind = $2
		RETURNING ` + reportColumns

	rep, err := scanReportRow(r.pool.QueryRow(ctx, query, id, string(r.kind), string(status), at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("updating report: %w", err)
	}
	return &rep, nil
}

func scanReportRow(row pgx.Row) (entity.Report, error) {
	var (
		rep          entity.Report
		kind, status string
	)
	err := row.Scan(
		&rep.ID,
		&kind,
		&rep.Reason,
		&rep.ReportedBy,
		&rep.TargetID,
		&status,
		&rep.CreatedAt,
		&rep.UpdatedAt,
	)
	rep.Kind = entity.Kind(kind)
	rep.Status = entity.Status(status)
	return rep, err
}
