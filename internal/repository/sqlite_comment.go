package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/domain"
)

type SQLiteCommentRepo struct {
	db db.DBTX
}

func NewSQLiteCommentRepo(conn db.DBTX) *SQLiteCommentRepo {
	return &SQLiteCommentRepo{db: conn}
}

const commentColumns = `id, task_id, author_id, author_name, author_role, content,
	attachments, mentions, edited, edited_at, created_at`

func (r *SQLiteCommentRepo) Create(ctx context.Context, c *domain.TaskComment) error {
	attachments, err := encodeList(c.Attachments)
	if err != nil {
		return err
	}
	mentions, err := encodeList(c.Mentions)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO task_comments (`+commentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.TaskID, c.AuthorID, c.AuthorName, string(c.AuthorRole), c.Content,
		attachments, mentions, boolToInt(c.Edited),
		nullableTimeToString(c.EditedAt, timeLayout), formatTime(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

func (r *SQLiteCommentRepo) GetByID(ctx context.Context, id string) (*domain.TaskComment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM task_comments WHERE id = ?`, id)
	return scanComment(row)
}

func (r *SQLiteCommentRepo) ListByTask(ctx context.Context, taskID string) ([]*domain.TaskComment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM task_comments WHERE task_id = ? ORDER BY created_at, rowid`, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	comments := []*domain.TaskComment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}
	return comments, nil
}

// Update overwrites the body in place; the previous text is gone afterwards.
func (r *SQLiteCommentRepo) Update(ctx context.Context, c *domain.TaskComment) error {
	mentions, err := encodeList(c.Mentions)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE task_comments SET content = ?, mentions = ?, edited = ?, edited_at = ? WHERE id = ?`,
		c.Content, mentions, boolToInt(c.Edited), nullableTimeToString(c.EditedAt, timeLayout), c.ID)
	if err != nil {
		return fmt.Errorf("updating comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("comment: %w", ErrNotFound)
	}
	return nil
}

func scanComment(row scanner) (*domain.TaskComment, error) {
	var c domain.TaskComment
	var role, attachments, mentions, createdAt string
	var edited int
	var editedAt sql.NullString

	err := row.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.AuthorName, &role, &c.Content,
		&attachments, &mentions, &edited, &editedAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("comment: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning comment: %w", err)
	}
	c.AuthorRole = domain.Role(role)
	c.Edited = intToBool(edited)
	c.EditedAt = parseNullableTime(editedAt, timeLayout)
	if c.Attachments, err = decodeList(attachments); err != nil {
		return nil, err
	}
	if c.Mentions, err = decodeList(mentions); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing comment created_at: %w", err)
	}
	return &c, nil
}
