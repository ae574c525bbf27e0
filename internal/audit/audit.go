// Package audit records one row per dispatch request to a Postgres
// dispatch_audit_log table.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
)

// Log writes dispatch outcomes to Postgres.
type Log struct {
	db *sql.DB
}

// New wraps an already-opened database handle.
func New(db *sql.DB) *Log {
	return &Log{db: db}
}

// Entry is one dispatch request's audited outcome.
type Entry struct {
	Pathway      string // "external", "internal", "droppull"
	OrderCount   int
	Status       string // "committed", "infeasible", "error"
	MakespanMins float64
	Detail       map[string]interface{}
}

// Record inserts one audit entry. Audit logging is diagnostic-only;
// failures are the caller's to decide whether to treat as fatal.
func (l *Log) Record(ctx context.Context, e Entry) error {
	var detailJSON []byte
	if e.Detail != nil {
		var err error
		detailJSON, err = json.Marshal(e.Detail)
		if err != nil {
			return err
		}
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO dispatch_audit_log (pathway, order_count, status, makespan_minutes, detail, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())`,
		e.Pathway, e.OrderCount, e.Status, e.MakespanMins, detailJSON,
	)
	return err
}
