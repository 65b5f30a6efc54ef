package model

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/jjt256723/couple-space-app/service/storage"
)

// Couple 情侣关系。invite_code 用于第二位成员绑定，全局唯一。
type Couple struct {
	ID              int64      `json:"id"`
	InviteCode      string     `json:"invite_code"`
	AnniversaryDate *time.Time `json:"anniversary_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Room 聊天房间，与情侣关系一对一，随情侣创建。
type Room struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CoupleID  int64     `json:"couple_id"`
	CreatedAt time.Time `json:"created_at"`
}

var ErrNotFound = errors.New("couple not found")

func scanCouple(row pgx.Row) (*Couple, error) {
	var cp Couple
	err := row.Scan(&cp.ID, &cp.InviteCode, &cp.AnniversaryDate, &cp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan couple")
	}
	return &cp, nil
}

// CreateWithRoom 在同一事务里建情侣关系和聊天房间，并把创建者绑上去。
func CreateWithRoom(ctx context.Context, creatorUserID int64, inviteCode, roomName string) (*Couple, *Room, error) {
	tx, err := storage.Pg().Begin(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cp Couple
	err = tx.QueryRow(ctx,
		`INSERT INTO couples (invite_code) VALUES ($1)
		 RETURNING id, invite_code, anniversary_date, created_at`,
		inviteCode).Scan(&cp.ID, &cp.InviteCode, &cp.AnniversaryDate, &cp.CreatedAt)
	if err != nil {
		return nil, nil, errors.Wrap(err, "insert couple")
	}

	var rm Room
	err = tx.QueryRow(ctx,
		`INSERT INTO rooms (name, couple_id) VALUES ($1, $2)
		 RETURNING id, name, couple_id, created_at`,
		roomName, cp.ID).Scan(&rm.ID, &rm.Name, &rm.CoupleID, &rm.CreatedAt)
	if err != nil {
		return nil, nil, errors.Wrap(err, "insert room")
	}

	ct, err := tx.Exec(ctx,
		`UPDATE users SET couple_id = $2, updated_at = now() WHERE id = $1 AND couple_id IS NULL`,
		creatorUserID, cp.ID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "bind creator")
	}
	if ct.RowsAffected() == 0 {
		return nil, nil, errors.New("creator missing or already paired")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, errors.Wrap(err, "commit tx")
	}
	return &cp, &rm, nil
}

func GetByID(ctx context.Context, id int64) (*Couple, error) {
	row := storage.Pg().QueryRow(ctx,
		`SELECT id, invite_code, anniversary_date, created_at FROM couples WHERE id = $1`, id)
	return scanCouple(row)
}

func GetByInviteCode(ctx context.Context, code string) (*Couple, error) {
	row := storage.Pg().QueryRow(ctx,
		`SELECT id, invite_code, anniversary_date, created_at FROM couples WHERE invite_code = $1`, code)
	return scanCouple(row)
}

// UpdateAnniversary 设置纪念日。
func UpdateAnniversary(ctx context.Context, id int64, date time.Time) (*Couple, error) {
	row := storage.Pg().QueryRow(ctx,
		`UPDATE couples SET anniversary_date = $2 WHERE id = $1
		 RETURNING id, invite_code, anniversary_date, created_at`, id, date)
	return scanCouple(row)
}

// GetRoomForCouple 取情侣关系绑定的房间。
func GetRoomForCouple(ctx context.Context, coupleID int64) (*Room, error) {
	var rm Room
	err := storage.Pg().QueryRow(ctx,
		`SELECT id, name, couple_id, created_at FROM rooms WHERE couple_id = $1`,
		coupleID).Scan(&rm.ID, &rm.Name, &rm.CoupleID, &rm.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan room")
	}
	return &rm, nil
}

// GetRoomByID 校验房间归属时使用。
func GetRoomByID(ctx context.Context, roomID int64) (*Room, error) {
	var rm Room
	err := storage.Pg().QueryRow(ctx,
		`SELECT id, name, couple_id, created_at FROM rooms WHERE id = $1`,
		roomID).Scan(&rm.ID, &rm.Name, &rm.CoupleID, &rm.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan room")
	}
	return &rm, nil
}
