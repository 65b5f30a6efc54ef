package chat

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	msgmodel "github.com/jjt256723/couple-space-app/module/message/model"
	"github.com/jjt256723/couple-space-app/tools/decode"
)

// 客户端上行事件类型
const (
	EventPing        = "ping"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventReadReceipt = "read_receipt"
)

// 服务端下行事件类型
const (
	EventConnected   = "connected"
	EventUserOnline  = "user_online"
	EventUserOffline = "user_offline"
	EventPong        = "pong"
	EventError       = "error"
	EventNewMessage  = "new_message"
	EventUserTyping  = "user_typing"
	EventMessageRead = "message_read"
)

// 应用层关闭码
const (
	CloseInvalidCredentials = 4001 // 握手认证失败
	CloseInternalFault      = 4000 // 会话内部故障，reason 带诊断信息
)

// InboundFrame 上行帧。整帧是一个扁平 JSON 对象，type 字段做路由，
// 其余字段留在 payload 里按事件类型再二次解码。
type InboundFrame struct {
	Type    string
	Payload map[string]any
}

// ParseInbound 解析一条上行文本帧。缺 type 或非对象都算坏帧。
func ParseInbound(raw []byte) (*InboundFrame, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrap(err, "bad frame")
	}
	t, _ := m["type"].(string)
	if t == "" {
		return nil, errors.New("frame missing type")
	}
	return &InboundFrame{Type: t, Payload: m}, nil
}

// DecodePayload 把帧的剩余字段解码成具体事件结构（宽松模式，
// "123" 也能进 int64 字段，宽容各端客户端的序列化差异）。
func DecodePayload[T any](f *InboundFrame) (*T, error) {
	return decode.Map[T](f.Payload)
}

// SendMessageEvent send_message 负载
type SendMessageEvent struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	RoomID      int64  `json:"room_id"`
}

// TypingEvent typing 负载
type TypingEvent struct {
	RoomID   int64 `json:"room_id"`
	IsTyping bool  `json:"is_typing"`
}

// ReadReceiptEvent read_receipt 负载
type ReadReceiptEvent struct {
	MessageID int64 `json:"message_id"`
}

// ---- 下行帧 ----

type connectedFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	RoomID  int64  `json:"room_id"`
}

type presenceFrame struct {
	Type      string `json:"type"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
}

type pongFrame struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type newMessageFrame struct {
	Type    string            `json:"type"`
	Message *msgmodel.Message `json:"message"`
}

type userTypingFrame struct {
	Type     string `json:"type"`
	UserID   int64  `json:"user_id"`
	IsTyping bool   `json:"is_typing"`
}

type messageReadFrame struct {
	Type      string `json:"type"`
	MessageID int64  `json:"message_id"`
	UserID    int64  `json:"user_id"`
}

// 帧结构自己控制，序列化不会失败
func marshalFrame(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

func ConnectedFrame(roomID int64) []byte {
	return marshalFrame(connectedFrame{Type: EventConnected, Message: "已连接到聊天室", RoomID: roomID})
}

func UserOnlineFrame(userID int64, username string) []byte {
	return marshalFrame(presenceFrame{
		Type: EventUserOnline, UserID: userID, Username: username,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func UserOfflineFrame(userID int64, username string) []byte {
	return marshalFrame(presenceFrame{
		Type: EventUserOffline, UserID: userID, Username: username,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func PongFrame(at time.Time) []byte {
	return marshalFrame(pongFrame{Type: EventPong, Timestamp: at.UTC().Format(time.RFC3339)})
}

func ErrorFrame(msg string) []byte {
	return marshalFrame(errorFrame{Type: EventError, Message: msg})
}

func NewMessageFrame(m *msgmodel.Message) []byte {
	return marshalFrame(newMessageFrame{Type: EventNewMessage, Message: m})
}

func UserTypingFrame(userID int64, isTyping bool) []byte {
	return marshalFrame(userTypingFrame{Type: EventUserTyping, UserID: userID, IsTyping: isTyping})
}

func MessageReadFrame(messageID, readerID int64) []byte {
	return marshalFrame(messageReadFrame{Type: EventMessageRead, MessageID: messageID, UserID: readerID})
}
