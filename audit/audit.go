// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Entry is one audit trail record.
type Entry struct {
	ID          string         `json:"id"`
	Action      string         `json:"action"`
	ActorUserID string         `json:"actor_user_id"`
	ActorRole   string         `json:"actor_role"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Record appends an audit entry. Best-effort: a failed write is logged and
// never propagated, so the primary operation's outcome is unaffected.
func Record(db *sql.DB, e Entry) {
	var meta []byte
	if e.Metadata != nil {
		var err error
		meta, err = json.Marshal(e.Metadata)
		if err != nil {
			slog.Warn("audit metadata not serializable", "action", e.Action, "error", err)
			meta = nil
		}
	}

	_, err := db.Exec(`
		INSERT INTO audit_log (id, action, actor_user_id, actor_role, entity_type, entity_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.NewString(), e.Action, e.ActorUserID, e.ActorRole, e.EntityType, e.EntityID, meta, time.Now())

	if err != nil {
		slog.Warn("audit write failed", "action", e.Action, "entity_id", e.EntityID, "error", err)
	}
}

// ForEntity returns the most recent audit entries for an entity, newest first.
func ForEntity(db *sql.DB, entityType, entityID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(`
		SELECT id, action, actor_user_id, actor_role, entity_type, entity_id, metadata, created_at
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, entityType, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var meta []byte
		if err := rows.Scan(&e.ID, &e.Action, &e.ActorUserID, &e.ActorRole, &e.EntityType, &e.EntityID, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				slog.Warn("audit metadata not parseable", "id", e.ID, "error", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
