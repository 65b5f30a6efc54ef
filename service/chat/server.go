package chat

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jjt256723/couple-space-app/logger"
	"github.com/jjt256723/couple-space-app/service/storage"
	"github.com/jjt256723/couple-space-app/tools/ids"
)

// Config 实时服务参数，零值可用。
type Config struct {
	// 每连接出站队列容量，默认 64。
	SendQueueSize int
	// redis presence 镜像的 TTL，默认 90s，由心跳续期。
	PresenceTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 64
	}
	if c.PresenceTTL <= 0 {
		c.PresenceTTL = 90 * time.Second
	}
	return c
}

// Server 实时核心：连接表 + 房间表 + 事件分发，全部挂在一个
// 实例上注入依赖，不走包级全局。
type Server struct {
	cfg      Config
	auth     TokenResolver
	store    Store
	reg      *Registry
	rooms    *RoomIndex
	disp     *Dispatcher
	upgrader websocket.Upgrader
}

func NewServer(auth TokenResolver, store Store, cfg Config) *Server {
	s := &Server{
		cfg:   cfg.withDefaults(),
		auth:  auth,
		store: store,
		reg:   NewRegistry(),
		rooms: NewRoomIndex(),
		disp:  NewDispatcher(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 跨域交给部署层
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.disp.Register(pingHandler{})
	s.disp.Register(sendMessageHandler{})
	s.disp.Register(typingHandler{})
	s.disp.Register(readReceiptHandler{})
	return s
}

// Registry 暴露给 REST 层查在线状态。
func (s *Server) Registry() *Registry { return s.reg }

// Rooms 暴露给观测/调试。
func (s *Server) Rooms() *RoomIndex { return s.rooms }

// HandleWS 握手入口：升级 -> 认证 -> 注册 -> 入房 -> 读循环。
// token 走 query 参数（浏览器 WebSocket 设不了 Authorization 头）。
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("[chat] upgrade failed: %v", err)
		return
	}

	// 升级后请求上下文可能随 hijack 失效，后续一律用独立 ctx
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	user, err := s.auth.Resolve(ctx, c.Query("token"))
	if err != nil || user == nil {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(CloseInvalidCredentials, "invalid credentials"),
			time.Now().Add(writeWait))
		_ = ws.Close()
		return
	}

	client := NewClient(ids.GenerateString(), user.ID, ws, s.cfg.SendQueueSize)
	sess := &Session{srv: s, client: client, user: user, state: stateAuthenticating}

	// 同账号只保留最新连接，旧的直接请下线
	if prev := s.reg.Register(client); prev != nil {
		logger.Infof("[chat] supersede user=%d old=%s new=%s", user.ID, prev.ConnID, client.ConnID)
		prev.closeWith(websocket.CloseNormalClosure, "账号在别处上线")
	}

	// 有情侣且建了房才入房；connected 确认帧只在入房后发
	if user.CoupleID != nil {
		if roomID, err := s.store.GetRoomForCouple(ctx, *user.CoupleID); err == nil && roomID != 0 {
			sess.roomID = roomID
			s.rooms.Join(user.ID, roomID)
			sess.Send(ConnectedFrame(roomID))
			sess.BroadcastRoom(UserOnlineFrame(user.ID, user.Username))
		}
	}
	_ = storage.PresenceOnline(ctx, user.ID, client.ConnID, s.cfg.PresenceTTL)

	logger.Infof("[chat] session open user=%d conn=%s room=%d", user.ID, client.ConnID, sess.roomID)
	sess.run()
}
