package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

var (
	pgOnce sync.Once
	pgPool *pgxpool.Pool
)

// InitPg 初始化 pgx 连接池（单例）
func InitPg(ctx context.Context, databaseURL string) error {
	var initErr error
	pgOnce.Do(func() {
		pool, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			initErr = errors.Wrap(err, "pgxpool.New")
			return
		}

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			initErr = errors.Wrap(err, "pg ping")
			return
		}
		pgPool = pool
	})
	return initErr
}

// Pg 获取连接池
func Pg() *pgxpool.Pool {
	if pgPool == nil {
		panic("postgres not initialized, call InitPg first")
	}
	return pgPool
}

// ClosePg 关闭连接池
func ClosePg() {
	if pgPool != nil {
		pgPool.Close()
	}
}

// EnsureSchema 建表（幂等）。小项目直接内置 DDL，不引迁移工具。
func EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS couples (
			id BIGSERIAL PRIMARY KEY,
			invite_code TEXT NOT NULL UNIQUE,
			anniversary_date TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			nickname TEXT NOT NULL,
			hashed_password TEXT NOT NULL,
			avatar_url TEXT,
			bio TEXT,
			couple_id BIGINT REFERENCES couples(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			couple_id BIGINT NOT NULL UNIQUE REFERENCES couples(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			message_type TEXT NOT NULL DEFAULT 'text',
			sender_id BIGINT NOT NULL REFERENCES users(id),
			receiver_id BIGINT NOT NULL REFERENCES users(id),
			room_id BIGINT NOT NULL REFERENCES rooms(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_room_created ON messages(room_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS diaries (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			mood TEXT,
			user_id BIGINT NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS todos (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			is_completed BOOLEAN NOT NULL DEFAULT false,
			due_date TIMESTAMPTZ,
			user_id BIGINT NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			completed_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS photos (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT NOT NULL,
			url TEXT NOT NULL,
			thumbnail_url TEXT,
			caption TEXT,
			user_id BIGINT NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range ddl {
		if _, err := Pg().Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "ensure schema")
		}
	}
	return nil
}
