package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panuwat93/smpk-duty-roster/pkg/core/model"
)

// Postgres implements Store on a PostgreSQL database. Roster schedules and
// cell styles are stored as JSONB documents with an integer version column;
// every write is a compare-and-swap against that column so concurrent
// approvals can never silently overwrite each other.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects a store to the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Connect opens a pgx pool for the given DSN and verifies the connection.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the tables and indexes the store needs.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS teams (
			department TEXT PRIMARY KEY,
			members    JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS schedules (
			department  TEXT   NOT NULL,
			month_key   TEXT   NOT NULL,
			schedule    JSONB  NOT NULL,
			cell_styles JSONB  NOT NULL,
			version     BIGINT NOT NULL,
			PRIMARY KEY (department, month_key)
		)`,
		`CREATE TABLE IF NOT EXISTS exchange_requests (
			id                   TEXT PRIMARY KEY,
			requester_id         TEXT NOT NULL,
			requester_name       TEXT NOT NULL,
			requester_department TEXT NOT NULL,
			target_id            TEXT NOT NULL,
			target_name          TEXT NOT NULL,
			request_date         TEXT NOT NULL,
			kind                 TEXT NOT NULL,
			my_shift_type        TEXT NOT NULL,
			my_shift_value       TEXT NOT NULL,
			other_shift_type     TEXT NOT NULL DEFAULT '',
			other_shift_value    TEXT NOT NULL DEFAULT '',
			target_shift_type    TEXT NOT NULL DEFAULT '',
			status               TEXT NOT NULL,
			created_at           TIMESTAMPTZ NOT NULL,
			decided_at           TIMESTAMPTZ,
			decided_by           TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exchange_requests_requester
			ON exchange_requests (requester_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_exchange_requests_department_status
			ON exchange_requests (requester_department, status, created_at DESC)`,
	}
	for _, stmt := range statements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func (p *Postgres) GetTeam(ctx context.Context, department string) ([]model.TeamMember, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx,
		`SELECT members FROM teams WHERE department = $1`, department).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team %s: %w", department, err)
	}
	var members []model.TeamMember
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, fmt.Errorf("failed to decode team %s: %w", department, err)
	}
	return members, nil
}

// SaveTeam upserts a department's member list. Used by the team
// administration collaborators and by fixtures; the exchange engine itself
// only reads teams.
func (p *Postgres) SaveTeam(ctx context.Context, department string, members []model.TeamMember) error {
	raw, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("failed to encode team %s: %w", department, err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO teams (department, members) VALUES ($1, $2)
		 ON CONFLICT (department) DO UPDATE SET members = EXCLUDED.members`,
		department, raw)
	if err != nil {
		return fmt.Errorf("failed to save team %s: %w", department, err)
	}
	return nil
}

func (p *Postgres) GetRoster(ctx context.Context, department, monthKey string) (*model.RosterDocument, error) {
	var (
		scheduleRaw []byte
		stylesRaw   []byte
		version     int64
	)
	err := p.pool.QueryRow(ctx,
		`SELECT schedule, cell_styles, version FROM schedules
		 WHERE department = $1 AND month_key = $2`, department, monthKey).
		Scan(&scheduleRaw, &stylesRaw, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roster %s-%s: %w", department, monthKey, err)
	}

	doc := &model.RosterDocument{
		Department: department,
		MonthKey:   monthKey,
		Version:    version,
	}
	if err := json.Unmarshal(scheduleRaw, &doc.Schedule); err != nil {
		return nil, fmt.Errorf("failed to decode roster %s-%s: %w", department, monthKey, err)
	}
	if err := json.Unmarshal(stylesRaw, &doc.CellStyles); err != nil {
		return nil, fmt.Errorf("failed to decode cell styles %s-%s: %w", department, monthKey, err)
	}
	return doc, nil
}

func (p *Postgres) SaveRoster(ctx context.Context, doc *model.RosterDocument, expectedVersion int64) error {
	return p.saveRoster(ctx, p.pool, doc, expectedVersion)
}

// dbExec lets the same CAS write run on the pool or inside a transaction.
type dbExec interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (p *Postgres) saveRoster(ctx context.Context, exec dbExec, doc *model.RosterDocument, expectedVersion int64) error {
	scheduleRaw, err := json.Marshal(orEmptySchedule(doc.Schedule))
	if err != nil {
		return fmt.Errorf("failed to encode roster %s-%s: %w", doc.Department, doc.MonthKey, err)
	}
	stylesRaw, err := json.Marshal(orEmptyStyles(doc.CellStyles))
	if err != nil {
		return fmt.Errorf("failed to encode cell styles %s-%s: %w", doc.Department, doc.MonthKey, err)
	}

	if expectedVersion == 0 {
		tag, err := exec.Exec(ctx,
			`INSERT INTO schedules (department, month_key, schedule, cell_styles, version)
			 VALUES ($1, $2, $3, $4, 1)
			 ON CONFLICT (department, month_key) DO NOTHING`,
			doc.Department, doc.MonthKey, scheduleRaw, stylesRaw)
		if err != nil {
			return fmt.Errorf("failed to insert roster %s-%s: %w", doc.Department, doc.MonthKey, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionConflict
		}
		return nil
	}

	tag, err := exec.Exec(ctx,
		`UPDATE schedules
		 SET schedule = $3, cell_styles = $4, version = version + 1
		 WHERE department = $1 AND month_key = $2 AND version = $5`,
		doc.Department, doc.MonthKey, scheduleRaw, stylesRaw, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update roster %s-%s: %w", doc.Department, doc.MonthKey, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (p *Postgres) InsertRequest(ctx context.Context, req *model.ExchangeRequest) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO exchange_requests (
			id, requester_id, requester_name, requester_department,
			target_id, target_name, request_date, kind,
			my_shift_type, my_shift_value, other_shift_type, other_shift_value,
			target_shift_type, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		req.ID, req.RequesterID, req.RequesterName, req.RequesterDepartment,
		req.TargetID, req.TargetName, req.Date, string(req.Kind),
		string(req.MyShiftType), req.MyShiftValue, string(req.OtherShiftType), req.OtherShiftValue,
		string(req.TargetShiftType), string(req.Status), req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert request %s: %w", req.ID, err)
	}
	return nil
}

const requestColumns = `id, requester_id, requester_name, requester_department,
	target_id, target_name, request_date, kind,
	my_shift_type, my_shift_value, other_shift_type, other_shift_value,
	target_shift_type, status, created_at, decided_at, decided_by`

func (p *Postgres) GetRequest(ctx context.Context, id string) (*model.ExchangeRequest, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM exchange_requests WHERE id = $1`, id)
	req, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request %s: %w", id, err)
	}
	return req, nil
}

func (p *Postgres) MarkRejected(ctx context.Context, id, decidedBy string, decidedAt time.Time) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE exchange_requests
		 SET status = $2, decided_at = $3, decided_by = $4
		 WHERE id = $1 AND status = $5`,
		id, string(model.StatusRejected), decidedAt, decidedBy, string(model.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to reject request %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return p.classifyDecisionMiss(ctx, id)
	}
	return nil
}

func (p *Postgres) CommitApproval(ctx context.Context, id, decidedBy string, decidedAt time.Time, doc *model.RosterDocument, expectedVersion int64) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin approval transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE exchange_requests
		 SET status = $2, decided_at = $3, decided_by = $4
		 WHERE id = $1 AND status = $5`,
		id, string(model.StatusApproved), decidedAt, decidedBy, string(model.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to approve request %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return p.classifyDecisionMiss(ctx, id)
	}

	if err := p.saveRoster(ctx, tx, doc, expectedVersion); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit approval of request %s: %w", id, err)
	}
	return nil
}

// classifyDecisionMiss distinguishes an unknown request from one that has
// already been decided, after a guarded status flip matched no rows.
func (p *Postgres) classifyDecisionMiss(ctx context.Context, id string) error {
	var status string
	err := p.pool.QueryRow(ctx,
		`SELECT status FROM exchange_requests WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check request %s: %w", id, err)
	}
	return ErrNotPending
}

func (p *Postgres) ListByRequester(ctx context.Context, requesterID string) ([]model.ExchangeRequest, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+requestColumns+` FROM exchange_requests
		 WHERE requester_id = $1 ORDER BY created_at DESC`, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests for %s: %w", requesterID, err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (p *Postgres) ListByDepartment(ctx context.Context, department string, status model.RequestStatus) ([]model.ExchangeRequest, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		rows, err = p.pool.Query(ctx,
			`SELECT `+requestColumns+` FROM exchange_requests
			 WHERE requester_department = $1 ORDER BY created_at DESC`, department)
	} else {
		rows, err = p.pool.Query(ctx,
			`SELECT `+requestColumns+` FROM exchange_requests
			 WHERE requester_department = $1 AND status = $2 ORDER BY created_at DESC`,
			department, string(status))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list requests for department %s: %w", department, err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]model.ExchangeRequest, error) {
	result := make([]model.ExchangeRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		result = append(result, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read requests: %w", err)
	}
	return result, nil
}

func scanRequest(row pgx.Row) (*model.ExchangeRequest, error) {
	var (
		req                                      model.ExchangeRequest
		kind, myRow, otherRow, targetRow, status string
		decidedAt                                *time.Time
	)
	err := row.Scan(
		&req.ID, &req.RequesterID, &req.RequesterName, &req.RequesterDepartment,
		&req.TargetID, &req.TargetName, &req.Date, &kind,
		&myRow, &req.MyShiftValue, &otherRow, &req.OtherShiftValue,
		&targetRow, &status, &req.CreatedAt, &decidedAt, &req.DecidedBy)
	if err != nil {
		return nil, err
	}
	req.Kind = model.RequestKind(kind)
	req.MyShiftType = model.Row(myRow)
	req.OtherShiftType = model.Row(otherRow)
	req.TargetShiftType = model.Row(targetRow)
	req.Status = model.RequestStatus(status)
	req.DecidedAt = decidedAt
	return &req, nil
}

func orEmptySchedule(s model.Schedule) model.Schedule {
	if s == nil {
		return model.Schedule{}
	}
	return s
}

func orEmptyStyles(s map[string]model.CellStyle) map[string]model.CellStyle {
	if s == nil {
		return map[string]model.CellStyle{}
	}
	return s
}
