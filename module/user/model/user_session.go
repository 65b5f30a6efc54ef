package model

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jjt256723/couple-space-app/service/mgo"
)

// UserSession 登录会话记录，落 Mongo（旁路审计，不参与请求路径鉴权）。
type UserSession struct {
	SessionID string `bson:"session_id" json:"session_id"` // 会话ID（雪花）
	UserID    int64  `bson:"user_id" json:"user_id"`

	DeviceType string `bson:"device_type,omitempty" json:"device_type"` // web/ios/android
	IP         string `bson:"ip,omitempty" json:"ip"`
	UserAgent  string `bson:"user_agent,omitempty" json:"user_agent"`

	// 不落原始 token，只存哈希
	AccessTokenHash  string `bson:"access_token_hash" json:"access_token_hash"`
	RefreshTokenHash string `bson:"refresh_token_hash,omitempty" json:"refresh_token_hash"`

	IsValid    bool      `bson:"is_valid" json:"is_valid"`
	Status     string    `bson:"status" json:"status"` // online/offline/replaced
	LoginTime  time.Time `bson:"login_time" json:"login_time"`
	ExpireAt   time.Time `bson:"expire_at" json:"expire_at"` // TTL索引用
	CreateTime time.Time `bson:"create_time" json:"create_time"`
	UpdateTime time.Time `bson:"update_time" json:"update_time"`
}

const (
	sessionColl    = "sessions"
	sessionLogColl = "user_session_log"
)

// SaveSessionReplacing 归档同一用户的旧会话并写入新会话。
// Mongo 未就绪时静默跳过：会话记录是尽力而为。
func SaveSessionReplacing(ctx context.Context, rec UserSession) error {
	db, ok := mgo.TryGetDB()
	if !ok {
		return nil
	}

	coll := db.Collection(sessionColl)
	logColl := db.Collection(sessionLogColl)

	// 1) 查旧
	var old UserSession
	err := coll.FindOne(ctx, bson.M{"user_id": rec.UserID, "is_valid": true}).Decode(&old)
	if err == nil {
		// 2) 归档
		doc := bson.M{}
		if b, merr := bson.Marshal(old); merr == nil {
			_ = bson.Unmarshal(b, &doc)
		}
		doc["archived_at"] = time.Now()
		doc["reason"] = "relogin"
		if _, e := logColl.InsertOne(ctx, doc); e != nil {
			return e
		}
	}

	// 3) replace + upsert
	rec.UpdateTime = time.Now()
	_, err = coll.ReplaceOne(ctx,
		bson.M{"user_id": rec.UserID},
		rec,
		options.Replace().SetUpsert(true),
	)
	return err
}

// InvalidateSession 登出/过期时标记会话失效。
func InvalidateSession(ctx context.Context, userID int64, reason string) error {
	db, ok := mgo.TryGetDB()
	if !ok {
		return nil
	}
	_, err := db.Collection(sessionColl).UpdateOne(ctx,
		bson.M{"user_id": userID, "is_valid": true},
		bson.M{"$set": bson.M{"is_valid": false, "status": reason, "update_time": time.Now()}},
	)
	return err
}
