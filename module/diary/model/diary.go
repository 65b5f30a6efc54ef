package model

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/jjt256723/couple-space-app/service/storage"
)

type Diary struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Mood      *string    `json:"mood,omitempty"`
	UserID    int64      `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

var ErrNotFound = errors.New("diary not found")

const diaryCols = `id, title, content, mood, user_id, created_at, updated_at`

func scanDiary(row pgx.Row) (*Diary, error) {
	var d Diary
	err := row.Scan(&d.ID, &d.Title, &d.Content, &d.Mood, &d.UserID, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan diary")
	}
	return &d, nil
}

func Create(ctx context.Context, userID int64, title, content string, mood *string) (*Diary, error) {
	row := storage.Pg().QueryRow(ctx,
		`INSERT INTO diaries (title, content, mood, user_id)
		 VALUES ($1, $2, $3, $4) RETURNING `+diaryCols,
		title, content, mood, userID)
	return scanDiary(row)
}

func GetByID(ctx context.Context, id int64) (*Diary, error) {
	row := storage.Pg().QueryRow(ctx, `SELECT `+diaryCols+` FROM diaries WHERE id = $1`, id)
	return scanDiary(row)
}

// ListVisible 有情侣关系时双方日记都可见，否则只看自己的。
func ListVisible(ctx context.Context, userID int64, coupleID *int64, skip, limit int) ([]*Diary, error) {
	if limit <= 0 {
		limit = 20
	}

	var (
		rows pgx.Rows
		err  error
	)
	if coupleID == nil {
		rows, err = storage.Pg().Query(ctx,
			`SELECT `+diaryCols+` FROM diaries WHERE user_id = $1
			 ORDER BY created_at DESC OFFSET $2 LIMIT $3`, userID, skip, limit)
	} else {
		rows, err = storage.Pg().Query(ctx,
			`SELECT d.id, d.title, d.content, d.mood, d.user_id, d.created_at, d.updated_at
			 FROM diaries d JOIN users u ON u.id = d.user_id
			 WHERE u.couple_id = $1
			 ORDER BY d.created_at DESC OFFSET $2 LIMIT $3`, *coupleID, skip, limit)
	}
	if err != nil {
		return nil, errors.Wrap(err, "list diaries")
	}
	defer rows.Close()

	var out []*Diary
	for rows.Next() {
		var d Diary
		if err := rows.Scan(&d.ID, &d.Title, &d.Content, &d.Mood, &d.UserID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan diary")
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func Update(ctx context.Context, id int64, title, content, mood *string) (*Diary, error) {
	row := storage.Pg().QueryRow(ctx,
		`UPDATE diaries SET
			title      = COALESCE($2, title),
			content    = COALESCE($3, content),
			mood       = COALESCE($4, mood),
			updated_at = now()
		 WHERE id = $1 RETURNING `+diaryCols,
		id, title, content, mood)
	return scanDiary(row)
}

func Delete(ctx context.Context, id int64) error {
	ct, err := storage.Pg().Exec(ctx, `DELETE FROM diaries WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete diary")
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
