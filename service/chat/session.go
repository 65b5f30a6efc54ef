package chat

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/jjt256723/couple-space-app/logger"
	"github.com/jjt256723/couple-space-app/service/storage"
)

// 会话生命周期状态，只由会话自己的协程推进。
type sessionState int

const (
	stateConnecting sessionState = iota
	stateAuthenticating
	stateActive
	stateClosed
)

func (st sessionState) String() string {
	switch st {
	case stateConnecting:
		return "connecting"
	case stateAuthenticating:
		return "authenticating"
	case stateActive:
		return "active"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

const opTimeout = 5 * time.Second

// Session 一条已认证连接的会话。读循环、事件分发、收尾都在这里。
type Session struct {
	srv    *Server
	client *Client
	user   *User

	// roomID 为 0 表示未入房（无情侣或情侣还没建房）。
	roomID int64

	state    sessionState
	downOnce sync.Once
}

// Send 只发给本会话的连接。
func (s *Session) Send(payload []byte) {
	s.client.enqueue(payload)
}

// BroadcastRoom 发给本会话房间里除自己外的成员。未入房 no-op。
func (s *Session) BroadcastRoom(payload []byte) {
	if s.roomID == 0 {
		return
	}
	s.srv.rooms.Broadcast(s.srv.reg, s.roomID, payload, s.user.ID)
}

func (s *Session) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// run 读循环。串行分发保证同一发送方的事件按到达顺序处理。
// 返回即会话结束：正常断开、协议错误、handler 故障或 panic，
// 全部汇入同一个 teardown。
func (s *Session) run() {
	var fault error
	defer func() {
		if r := recover(); r != nil {
			fault = errors.Errorf("session panic: %v", r)
		}
		s.teardown(fault)
	}()

	s.state = stateActive
	for {
		_, raw, err := s.client.ws.ReadMessage()
		if err != nil {
			// 客户端主动断开或网络层挂了，走正常收尾
			return
		}

		f, err := ParseInbound(raw)
		if err != nil {
			s.Send(ErrorFrame("无法解析的消息"))
			continue
		}

		h := s.srv.disp.Get(f.Type)
		if h == nil {
			s.Send(ErrorFrame("未知的消息类型: " + f.Type))
			continue
		}

		if err := h.Handle(s, f); err != nil {
			fault = errors.Wrapf(err, "handle %s", f.Type)
			return
		}
	}
}

// teardown 幂等收尾：注销连接、退房、广播下线、清 presence 镜像。
// 故障路径和正常路径共用，区别只在关闭码和日志级别。
// 若连接已被同账号的新连接顶替，退房/下线广播归新会话管，这里跳过。
func (s *Session) teardown(fault error) {
	s.downOnce.Do(func() {
		s.state = stateClosed

		removed := s.srv.reg.Unregister(s.user.ID, s.client)
		if removed && s.roomID != 0 {
			s.srv.rooms.Leave(s.user.ID, s.roomID)
			s.srv.rooms.Broadcast(s.srv.reg, s.roomID,
				UserOfflineFrame(s.user.ID, s.user.Username), NoExclude)
		}
		if removed {
			ctx, cancel := s.opCtx()
			defer cancel()
			_ = storage.PresenceOffline(ctx, s.user.ID)
		}

		if fault != nil {
			logger.Errorf("[chat] session fault user=%d conn=%s err=%v", s.user.ID, s.client.ConnID, fault)
			s.client.closeWith(CloseInternalFault, closeReason(fault))
		} else {
			logger.Infof("[chat] session closed user=%d conn=%s", s.user.ID, s.client.ConnID)
			s.client.shutdown()
		}
	})
}

// 关闭帧 reason 上限 123 字节，超了截断。
func closeReason(err error) string {
	msg := err.Error()
	if len(msg) > 123 {
		msg = msg[:120] + "..."
	}
	return msg
}
