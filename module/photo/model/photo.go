package model

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/jjt256723/couple-space-app/service/storage"
)

type Photo struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`
	URL          string    `json:"url"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	Caption      *string   `json:"caption,omitempty"`
	UserID       int64     `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

var ErrNotFound = errors.New("photo not found")

const photoCols = `id, filename, url, thumbnail_url, caption, user_id, created_at`

func scanPhoto(row pgx.Row) (*Photo, error) {
	var p Photo
	err := row.Scan(&p.ID, &p.Filename, &p.URL, &p.ThumbnailURL, &p.Caption, &p.UserID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan photo")
	}
	return &p, nil
}

func Create(ctx context.Context, userID int64, filename, url string, thumbnailURL, caption *string) (*Photo, error) {
	row := storage.Pg().QueryRow(ctx,
		`INSERT INTO photos (filename, url, thumbnail_url, caption, user_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING `+photoCols,
		filename, url, thumbnailURL, caption, userID)
	return scanPhoto(row)
}

func GetByID(ctx context.Context, id int64) (*Photo, error) {
	row := storage.Pg().QueryRow(ctx, `SELECT `+photoCols+` FROM photos WHERE id = $1`, id)
	return scanPhoto(row)
}

// ListForCouple 相册按情侣维度共享。
func ListForCouple(ctx context.Context, coupleID int64, skip, limit int) ([]*Photo, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := storage.Pg().Query(ctx,
		`SELECT p.id, p.filename, p.url, p.thumbnail_url, p.caption, p.user_id, p.created_at
		 FROM photos p JOIN users u ON u.id = p.user_id
		 WHERE u.couple_id = $1
		 ORDER BY p.created_at DESC OFFSET $2 LIMIT $3`,
		coupleID, skip, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list photos")
	}
	defer rows.Close()

	var out []*Photo
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.Filename, &p.URL, &p.ThumbnailURL, &p.Caption, &p.UserID, &p.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan photo")
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func Delete(ctx context.Context, id int64) error {
	ct, err := storage.Pg().Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete photo")
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
