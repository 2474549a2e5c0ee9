package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"mirrorcaps/internal/domain"
)

// ActivityLogRepositoryImpl implements the ActivityLogRepository interface.
// The trail is append-only; nothing in the system ever updates or deletes an
// entry.
type ActivityLogRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewActivityLogRepository creates a new ActivityLogRepository
func NewActivityLogRepository(db *pgxpool.Pool) domain.ActivityLogRepository {
	return &ActivityLogRepositoryImpl{db: db}
}

// Save appends an activity log entry
func (r *ActivityLogRepositoryImpl) Save(ctx context.Context, entry *domain.ActivityLog) error {
	var metadata []byte
	if entry.Metadata != nil {
		var err error
		metadata, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal activity metadata: %w", err)
		}
	}

	query := `
		INSERT INTO activity_logs (
			id, actor_id, actor_email, actor_role, action,
			target_collection, target_id, metadata, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.ActorEmail,
		entry.ActorRole,
		entry.Action,
		entry.TargetCollection,
		entry.TargetID,
		metadata,
		entry.Status,
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save activity log: %w", err)
	}

	return nil
}
