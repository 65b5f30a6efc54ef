package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jjt256723/couple-space-app/logger"
)

const writeWait = 10 * time.Second

// Client represents one live connection of an authenticated user.
// 出站帧全部走 send 队列，由唯一的写协程消费，保证同一接收方的
// 投递顺序与提交顺序一致。
type Client struct {
	ConnID string
	UserID int64

	ws   *websocket.Conn
	send chan []byte
	quit chan struct{}
	once sync.Once
}

func NewClient(connID string, userID int64, ws *websocket.Conn, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 64
	}
	c := &Client{
		ConnID: connID,
		UserID: userID,
		ws:     ws,
		send:   make(chan []byte, sendQueueSize),
		quit:   make(chan struct{}),
	}
	go c.writePump()
	return c
}

// enqueue 非阻塞投递；慢客户端丢帧（尽力而为，不拖垮别的会话）。
func (c *Client) enqueue(payload []byte) {
	select {
	case c.send <- payload:
	default:
		logger.Warnf("[chat] send queue full, drop frame conn=%s user=%d", c.ConnID, c.UserID)
	}
}

// writePump 唯一写者。quit 后把队列里剩余的帧冲掉再关底层连接。
func (c *Client) writePump() {
	defer func() {
		_ = c.ws.Close()
	}()
	for {
		select {
		case p := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, p); err != nil {
				return
			}
		case <-c.quit:
			for {
				select {
				case p := <-c.send:
					_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.ws.WriteMessage(websocket.TextMessage, p); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

// shutdown 幂等：触发写协程收尾并关闭连接。
func (c *Client) shutdown() {
	c.once.Do(func() { close(c.quit) })
}

// closeWith 带关闭码下线。WriteControl 允许与写协程并发。
func (c *Client) closeWith(code int, reason string) {
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeWait))
	c.shutdown()
}
