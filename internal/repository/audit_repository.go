package repository

import (
	"context"
	"database/sql"

	"github.com/cinemacore/booking/internal/model"
)

// AuditRepo appends rows to the audit_log table.  The trail is
// append-only; no update or delete methods exist.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo bound to the given database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// Append writes one audit entry.
func (r *AuditRepo) Append(ctx context.Context, e *model.AuditEntry) error {
	const q = `INSERT INTO audit_log (actor_id, actor_type, action, target_type, target_id, payload) VALUES (?, ?, ?, ?, ?, ?)`
	var actor any
	if e.ActorID != nil {
		actor = *e.ActorID
	}
	result, err := r.db.ExecContext(ctx, q, actor, e.ActorType, e.Action, e.TargetType, e.TargetID, e.Payload)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}
