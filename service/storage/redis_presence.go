package storage

import (
	"context"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/pkg/errors"

	rds "github.com/jjt256723/couple-space-app/service/storage/redis"
)

// presence key: cs:presence:<user>
// Value: connection id, TTL controls the online validity period.
// 仅作镜像：权威在线状态在进程内的 Registry，这里给 REST 层和重启后的观测用。
func presenceKey(userID int64) string {
	return "cs:presence:" + strconv.FormatInt(userID, 10)
}

// PresenceOnline sets the user as online and renews the TTL.
func PresenceOnline(ctx context.Context, userID int64, connID string, ttl time.Duration) error {
	if !rds.Ready() {
		return nil
	}
	return rds.GetRedis().Set(ctx, presenceKey(userID), connID, ttl).Err()
}

// PresenceOffline actively sets the user offline (deletes the key).
func PresenceOffline(ctx context.Context, userID int64) error {
	if !rds.Ready() {
		return nil
	}
	return rds.GetRedis().Del(ctx, presenceKey(userID)).Err()
}

// PresenceLookup checks whether the user is online.
func PresenceLookup(ctx context.Context, userID int64) (connID string, online bool, err error) {
	if !rds.Ready() {
		return "", false, nil
	}
	val, err := rds.GetRedis().Get(ctx, presenceKey(userID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
