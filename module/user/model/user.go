package model

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/jjt256723/couple-space-app/service/storage"
)

// User 用户主档。couple_id 为空表示尚未绑定情侣关系。
type User struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	Nickname       string     `json:"nickname"`
	HashedPassword string     `json:"-"`
	AvatarURL      *string    `json:"avatar_url,omitempty"`
	Bio            *string    `json:"bio,omitempty"`
	CoupleID       *int64     `json:"couple_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

var ErrNotFound = errors.New("user not found")

const userCols = `id, username, email, nickname, hashed_password, avatar_url, bio, couple_id, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Nickname, &u.HashedPassword,
		&u.AvatarURL, &u.Bio, &u.CoupleID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan user")
	}
	return &u, nil
}

func Create(ctx context.Context, username, email, nickname, hashedPassword string) (*User, error) {
	row := storage.Pg().QueryRow(ctx,
		`INSERT INTO users (username, email, nickname, hashed_password)
		 VALUES ($1, $2, $3, $4) RETURNING `+userCols,
		username, email, nickname, hashedPassword)
	return scanUser(row)
}

func GetByID(ctx context.Context, id int64) (*User, error) {
	row := storage.Pg().QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func GetByUsername(ctx context.Context, username string) (*User, error) {
	row := storage.Pg().QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func GetByEmail(ctx context.Context, email string) (*User, error) {
	row := storage.Pg().QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetPartner 取同一对情侣中的另一位成员。
func GetPartner(ctx context.Context, coupleID, excludingUserID int64) (*User, error) {
	row := storage.Pg().QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE couple_id = $1 AND id <> $2`,
		coupleID, excludingUserID)
	return scanUser(row)
}

// UpdateProfile 只更新非空字段。
func UpdateProfile(ctx context.Context, id int64, nickname, avatarURL, bio *string) (*User, error) {
	row := storage.Pg().QueryRow(ctx,
		`UPDATE users SET
			nickname   = COALESCE($2, nickname),
			avatar_url = COALESCE($3, avatar_url),
			bio        = COALESCE($4, bio),
			updated_at = now()
		 WHERE id = $1 RETURNING `+userCols,
		id, nickname, avatarURL, bio)
	return scanUser(row)
}

// CountCoupleMembers 容量检查用：一对情侣最多两人。
func CountCoupleMembers(ctx context.Context, coupleID int64) (int, error) {
	var n int
	err := storage.Pg().QueryRow(ctx,
		`SELECT count(*) FROM users WHERE couple_id = $1`, coupleID).Scan(&n)
	return n, errors.Wrap(err, "count couple members")
}

// BindToCouple 把用户挂到情侣关系上。
func BindToCouple(ctx context.Context, userID, coupleID int64) error {
	ct, err := storage.Pg().Exec(ctx,
		`UPDATE users SET couple_id = $2, updated_at = now() WHERE id = $1 AND couple_id IS NULL`,
		userID, coupleID)
	if err != nil {
		return errors.Wrap(err, "bind couple")
	}
	if ct.RowsAffected() == 0 {
		return errors.New("user missing or already paired")
	}
	return nil
}
