package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/domain"
)

// SQLiteHistoryRepo is the audit log. Rows are insert-only; triggers in the
// schema reject UPDATE and DELETE.
type SQLiteHistoryRepo struct {
	db db.DBTX
}

func NewSQLiteHistoryRepo(conn db.DBTX) *SQLiteHistoryRepo {
	return &SQLiteHistoryRepo{db: conn}
}

func (r *SQLiteHistoryRepo) Append(ctx context.Context, e *domain.HistoryEntry) error {
	if !e.Action.Valid() {
		return fmt.Errorf("appending history: unknown action %q", e.Action)
	}
	oldVal, err := json.Marshal(e.OldValue)
	if err != nil {
		return fmt.Errorf("encoding old value: %w", err)
	}
	newVal, err := json.Marshal(e.NewValue)
	if err != nil {
		return fmt.Errorf("encoding new value: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO history_entries
		(id, entity_kind, entity_id, actor_id, actor_name, action, field, old_value, new_value, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.EntityKind), e.EntityID, e.ActorID, e.ActorName, string(e.Action),
		e.Field, string(oldVal), string(newVal), e.Detail, formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("appending history: %w", err)
	}
	if e.Seq, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading history seq: %w", err)
	}
	return nil
}

// ListByEntity returns the timeline of one entity, oldest first. Entries
// written in the same instant keep insertion order.
func (r *SQLiteHistoryRepo) ListByEntity(ctx context.Context, kind domain.EntityKind, entityID string) ([]*domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT seq, id, entity_kind, entity_id, actor_id, actor_name,
		action, field, old_value, new_value, detail, created_at
		FROM history_entries WHERE entity_kind = ? AND entity_id = ?
		ORDER BY created_at, seq`, string(kind), entityID)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	entries := []*domain.HistoryEntry{}
	for rows.Next() {
		var e domain.HistoryEntry
		var kindStr, action, oldVal, newVal, createdAt string
		if err := rows.Scan(&e.Seq, &e.ID, &kindStr, &e.EntityID, &e.ActorID, &e.ActorName,
			&action, &e.Field, &oldVal, &newVal, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		e.EntityKind = domain.EntityKind(kindStr)
		e.Action = domain.HistoryAction(action)
		if err := json.Unmarshal([]byte(oldVal), &e.OldValue); err != nil {
			return nil, fmt.Errorf("history %s old value: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(newVal), &e.NewValue); err != nil {
			return nil, fmt.Errorf("history %s new value: %w", e.ID, err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing history created_at: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return entries, nil
}
