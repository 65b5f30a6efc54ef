package chat

import (
	"context"

	msgmodel "github.com/jjt256723/couple-space-app/module/message/model"
)

// User 会话期间用到的用户视图。CoupleID 为空表示未绑定情侣关系。
type User struct {
	ID       int64
	Username string
	CoupleID *int64
}

// TokenResolver 认证协作方：握手 token -> 用户记录。
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*User, error)
}

// Store 持久化协作方。实时核心只通过它触达数据库，
// 单测里可以用内存假实现替换。
type Store interface {
	// GetRoomForCouple 返回情侣关系绑定的房间ID；无房间时返回错误。
	GetRoomForCouple(ctx context.Context, coupleID int64) (int64, error)
	// GetPartner 返回同一对情侣中的另一位成员。
	GetPartner(ctx context.Context, coupleID, excludingUserID int64) (*User, error)
	// AppendMessage 落一条消息，id/created_at 由存储侧生成。
	AppendMessage(ctx context.Context, senderID, receiverID, roomID int64, content, messageType string) (*msgmodel.Message, error)
}

// EventHandler 处理一类客户端事件。
type EventHandler interface {
	Type() string
	Handle(sess *Session, f *InboundFrame) error
}

// Dispatcher 事件类型 -> handler
type Dispatcher struct {
	handlers map[string]EventHandler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]EventHandler)}
}

func (d *Dispatcher) Register(h EventHandler) { d.handlers[h.Type()] = h }

func (d *Dispatcher) Get(eventType string) EventHandler {
	return d.handlers[eventType]
}
