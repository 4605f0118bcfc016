package service

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/cinemacore/booking/internal/model"
)

// Audit is a fire-and-forget sink recording state transitions into the
// audit trail.  Failures are logged and swallowed; auditing never blocks
// or fails the operation it observes.
type Audit struct {
	store AuditStore
	log   *logrus.Logger
}

// NewAudit builds the audit service.
func NewAudit(store AuditStore, log *logrus.Logger) *Audit {
	return &Audit{store: store, log: log}
}

// Record appends one entry.  actorID may be zero for system actions.
func (a *Audit) Record(ctx context.Context, actorID uint64, actorType, action, targetType string, targetID uint64, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		a.log.WithError(err).WithField("action", action).Warn("could not encode audit payload")
		raw = []byte("{}")
	}
	entry := &model.AuditEntry{
		ActorType:  actorType,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Payload:    raw,
	}
	if actorID != 0 {
		entry.ActorID = &actorID
	}
	if err := a.store.Append(ctx, entry); err != nil {
		a.log.WithError(err).WithField("action", action).Warn("could not append audit entry")
	}
}
