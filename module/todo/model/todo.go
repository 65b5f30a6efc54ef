package model

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/jjt256723/couple-space-app/service/storage"
)

type Todo struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	UserID      int64      `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

var ErrNotFound = errors.New("todo not found")

const todoCols = `id, title, description, is_completed, due_date, user_id, created_at, completed_at`

func scanTodo(row pgx.Row) (*Todo, error) {
	var t Todo
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.IsCompleted, &t.DueDate, &t.UserID, &t.CreatedAt, &t.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan todo")
	}
	return &t, nil
}

func Create(ctx context.Context, userID int64, title string, description *string, dueDate *time.Time) (*Todo, error) {
	row := storage.Pg().QueryRow(ctx,
		`INSERT INTO todos (title, description, due_date, user_id)
		 VALUES ($1, $2, $3, $4) RETURNING `+todoCols,
		title, description, dueDate, userID)
	return scanTodo(row)
}

func GetByID(ctx context.Context, id int64) (*Todo, error) {
	row := storage.Pg().QueryRow(ctx, `SELECT `+todoCols+` FROM todos WHERE id = $1`, id)
	return scanTodo(row)
}

// ListVisible 与日记同规则：有情侣关系时共享清单。
func ListVisible(ctx context.Context, userID int64, coupleID *int64, skip, limit int, completedOnly bool) ([]*Todo, error) {
	if limit <= 0 {
		limit = 20
	}

	var (
		rows pgx.Rows
		err  error
	)
	if coupleID == nil {
		rows, err = storage.Pg().Query(ctx,
			`SELECT `+todoCols+` FROM todos
			 WHERE user_id = $1 AND ($4 = false OR is_completed)
			 ORDER BY created_at DESC OFFSET $2 LIMIT $3`,
			userID, skip, limit, completedOnly)
	} else {
		rows, err = storage.Pg().Query(ctx,
			`SELECT t.id, t.title, t.description, t.is_completed, t.due_date, t.user_id, t.created_at, t.completed_at
			 FROM todos t JOIN users u ON u.id = t.user_id
			 WHERE u.couple_id = $1 AND ($4 = false OR t.is_completed)
			 ORDER BY t.created_at DESC OFFSET $2 LIMIT $3`,
			*coupleID, skip, limit, completedOnly)
	}
	if err != nil {
		return nil, errors.Wrap(err, "list todos")
	}
	defer rows.Close()

	var out []*Todo
	for rows.Next() {
		var t Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.IsCompleted, &t.DueDate, &t.UserID, &t.CreatedAt, &t.CompletedAt); err != nil {
			return nil, errors.Wrap(err, "scan todo")
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// Update 完成状态翻转时维护 completed_at。
func Update(ctx context.Context, id int64, title, description *string, isCompleted *bool, dueDate *time.Time) (*Todo, error) {
	row := storage.Pg().QueryRow(ctx,
		`UPDATE todos SET
			title        = COALESCE($2, title),
			description  = COALESCE($3, description),
			due_date     = COALESCE($4, due_date),
			is_completed = COALESCE($5, is_completed),
			completed_at = CASE
				WHEN $5 IS TRUE AND completed_at IS NULL THEN now()
				WHEN $5 IS FALSE THEN NULL
				ELSE completed_at
			END
		 WHERE id = $1 RETURNING `+todoCols,
		id, title, description, dueDate, isCompleted)
	return scanTodo(row)
}

func Delete(ctx context.Context, id int64) error {
	ct, err := storage.Pg().Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete todo")
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
