// Package audit records mutating operations in the audit log table.
// Recording is best effort; a failed write is logged and swallowed so it
// never fails the operation being audited.
package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"scorevo/internal/models"
)

// Recorder persists audit entries.
type Recorder struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewRecorder returns a Recorder writing through database.
func NewRecorder(database *gorm.DB, log zerolog.Logger) *Recorder {
	return &Recorder{db: database, log: log}
}

// Record writes one audit entry. Nil recorders are allowed and do nothing.
func (r *Recorder) Record(ctx context.Context, actorID uuid.UUID, action, targetType, targetID string, meta map[string]any) {
	if r == nil || r.db == nil {
		return
	}

	payload, err := json.Marshal(meta)
	if err != nil {
		r.log.Error().Err(err).Str("action", action).Msg("marshal audit metadata")
		return
	}

	entry := models.AuditLog{
		ID:         uuid.New(),
		ActorID:    &actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   &targetID,
		Metadata:   payload,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		r.log.Error().Err(err).Str("action", action).Msg("write audit entry")
	}
}
