package model

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/jjt256723/couple-space-app/service/storage"
)

// Message 聊天消息，追加写入，永不更新。
// id 与 created_at 由数据库生成，客户端看到的必须是服务端权威值。
type Message struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	SenderID    int64     `json:"sender_id"`
	ReceiverID  int64     `json:"receiver_id"`
	RoomID      int64     `json:"room_id"`
	CreatedAt   time.Time `json:"created_at"`
}

var ErrNotFound = errors.New("message not found")

const msgCols = `id, content, message_type, sender_id, receiver_id, room_id, created_at`

// Append 落一条消息并返回带服务端字段的完整记录。
func Append(ctx context.Context, senderID, receiverID, roomID int64, content, messageType string) (*Message, error) {
	if messageType == "" {
		messageType = "text"
	}
	var m Message
	err := storage.Pg().QueryRow(ctx,
		`INSERT INTO messages (content, message_type, sender_id, receiver_id, room_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING `+msgCols,
		content, messageType, senderID, receiverID, roomID).
		Scan(&m.ID, &m.Content, &m.MessageType, &m.SenderID, &m.ReceiverID, &m.RoomID, &m.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "append message")
	}
	return &m, nil
}

func GetByID(ctx context.Context, id int64) (*Message, error) {
	var m Message
	err := storage.Pg().QueryRow(ctx,
		`SELECT `+msgCols+` FROM messages WHERE id = $1`, id).
		Scan(&m.ID, &m.Content, &m.MessageType, &m.SenderID, &m.ReceiverID, &m.RoomID, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get message")
	}
	return &m, nil
}

// ListForUser 按时间倒序取该用户收发的消息，再反转为时间正序返回。
func ListForUser(ctx context.Context, userID int64, skip, limit int) ([]*Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := storage.Pg().Query(ctx,
		`SELECT `+msgCols+` FROM messages
		 WHERE sender_id = $1 OR receiver_id = $1
		 ORDER BY created_at DESC OFFSET $2 LIMIT $3`,
		userID, skip, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Content, &m.MessageType, &m.SenderID, &m.ReceiverID, &m.RoomID, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan message")
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 倒序取出，正序返回
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
