package chat

import (
	"time"

	"github.com/pkg/errors"

	"github.com/jjt256723/couple-space-app/service/storage"
)

// pingHandler 心跳：回 pong 并续 presence 镜像的 TTL。
type pingHandler struct{}

func (pingHandler) Type() string { return EventPing }

func (pingHandler) Handle(s *Session, _ *InboundFrame) error {
	s.Send(PongFrame(time.Now()))
	ctx, cancel := s.opCtx()
	defer cancel()
	_ = storage.PresenceOnline(ctx, s.user.ID, s.client.ConnID, s.srv.cfg.PresenceTTL)
	return nil
}

// sendMessageHandler 落库 + 回发送方 + 广播给房间里的对方。
//
// 空内容回 error 帧；房间/对方解析不出来静默丢弃（客户端在
// 绑定情侣前后都可能连着，不把这种状态当协议错误）。
// 落库失败是内部故障，向上抛，由会话收尾统一关连接。
type sendMessageHandler struct{}

func (sendMessageHandler) Type() string { return EventSendMessage }

func (sendMessageHandler) Handle(s *Session, f *InboundFrame) error {
	ev, err := DecodePayload[SendMessageEvent](f)
	if err != nil {
		s.Send(ErrorFrame("消息格式错误"))
		return nil
	}
	if ev.Content == "" || ev.RoomID == 0 {
		s.Send(ErrorFrame("消息内容或房间ID不能为空"))
		return nil
	}
	if s.user.CoupleID == nil {
		return nil
	}

	ctx, cancel := s.opCtx()
	defer cancel()

	// room_id 必须是自己情侣的房间，别人房间的 id 一律当不存在
	roomID, err := s.srv.store.GetRoomForCouple(ctx, *s.user.CoupleID)
	if err != nil || roomID == 0 || roomID != ev.RoomID {
		return nil
	}
	partner, err := s.srv.store.GetPartner(ctx, *s.user.CoupleID, s.user.ID)
	if err != nil || partner == nil {
		return nil
	}

	m, err := s.srv.store.AppendMessage(ctx, s.user.ID, partner.ID, roomID, ev.Content, ev.MessageType)
	if err != nil {
		return errors.Wrap(err, "append message")
	}

	frame := NewMessageFrame(m)
	s.Send(frame) // 回显带服务端 id/时间戳的权威版本
	s.BroadcastRoom(frame)
	return nil
}

// typingHandler 输入状态透传，不落库。
type typingHandler struct{}

func (typingHandler) Type() string { return EventTyping }

func (typingHandler) Handle(s *Session, f *InboundFrame) error {
	ev, err := DecodePayload[TypingEvent](f)
	if err != nil {
		return nil
	}
	if s.roomID == 0 || ev.RoomID != s.roomID {
		return nil
	}
	s.BroadcastRoom(UserTypingFrame(s.user.ID, ev.IsTyping))
	return nil
}

// readReceiptHandler 已读回执透传给对方。
type readReceiptHandler struct{}

func (readReceiptHandler) Type() string { return EventReadReceipt }

func (readReceiptHandler) Handle(s *Session, f *InboundFrame) error {
	ev, err := DecodePayload[ReadReceiptEvent](f)
	if err != nil || ev.MessageID == 0 {
		return nil
	}
	if s.roomID == 0 {
		return nil
	}
	s.BroadcastRoom(MessageReadFrame(ev.MessageID, s.user.ID))
	return nil
}
