package auditstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/btb36/escpos-emulator/internal/database"
	"github.com/btb36/escpos-emulator/internal/utils"
)

// Repository persists sessions and their audit records. Writes are
// best-effort from the caller's point of view: a write failure is logged
// here and returned to the caller, which per spec.md's log-sink policy
// must swallow it rather than interrupt decoding.
type Repository struct {
	db     *database.DB
	logger *utils.ServiceLogger
}

// New creates a Repository backed by db.
func New(db *database.DB, logger *zap.Logger) *Repository {
	return &Repository{db: db, logger: utils.NewServiceLogger(logger, "auditstore")}
}

// CreateSession inserts a new session row.
func (r *Repository) CreateSession(ctx context.Context, s *Session) error {
	const query = `INSERT INTO sessions (id, started_at, remote_addr) VALUES ($1, $2, $3)`
	start := time.Now()
	_, err := r.db.ExecContext(ctx, query, s.ID, s.StartedAt, s.RemoteAddr)
	r.logger.LogDatabaseQuery(query, []interface{}{s.ID, s.StartedAt, s.RemoteAddr}, time.Since(start), err)
	if err != nil {
		utils.LogError(r.logger.Logger, "failed to create session", err, zap.String("session_id", s.ID.String()))
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// EndSession stamps a session's end time.
func (r *Repository) EndSession(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE sessions SET ended_at = now() WHERE id = $1`
	start := time.Now()
	_, err := r.db.ExecContext(ctx, query, id)
	r.logger.LogDatabaseQuery(query, []interface{}{id}, time.Since(start), err)
	if err != nil {
		utils.LogError(r.logger.Logger, "failed to end session", err, zap.String("session_id", id.String()))
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// AppendRecord inserts one audit record.
func (r *Repository) AppendRecord(ctx context.Context, rec *Record) error {
	const query = `INSERT INTO audit_records
			(session_id, seq, kind, occurred_at, mnemonic, display_name, params_summary, raw_hex)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	args := []interface{}{
		rec.SessionID, rec.Seq, string(rec.Kind), rec.OccurredAt,
		rec.Mnemonic, rec.DisplayName, rec.ParamsSummary, rec.RawHex,
	}
	start := time.Now()
	_, err := r.db.ExecContext(ctx, query, args...)
	r.logger.LogDatabaseQuery(query, args, time.Since(start), err)
	if err != nil {
		utils.LogError(r.logger.Logger, "failed to append audit record", err,
			zap.String("session_id", rec.SessionID.String()), zap.Int64("seq", rec.Seq))
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// ListRecords returns a page of audit records for a session, ordered by
// sequence number.
func (r *Repository) ListRecords(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]*Record, error) {
	const query = `SELECT session_id, seq, kind, occurred_at, mnemonic, display_name, params_summary, raw_hex
		 FROM audit_records
		 WHERE session_id = $1
		 ORDER BY seq ASC
		 LIMIT $2 OFFSET $3`
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, sessionID, limit, offset)
	r.logger.LogDatabaseQuery(query, []interface{}{sessionID, limit, offset}, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec := &Record{}
		var kind string
		if err := rows.Scan(&rec.SessionID, &rec.Seq, &kind, &rec.OccurredAt,
			&rec.Mnemonic, &rec.DisplayName, &rec.ParamsSummary, &rec.RawHex); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.Kind = RecordKind(kind)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetSession retrieves one session row.
func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	const query = `SELECT id, started_at, ended_at, remote_addr FROM sessions WHERE id = $1`
	s := &Session{}
	start := time.Now()
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.StartedAt, &s.EndedAt, &s.RemoteAddr)
	r.logger.LogDatabaseQuery(query, []interface{}{id}, time.Since(start), err)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}
