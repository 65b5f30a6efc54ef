package chat

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	msgmodel "github.com/jjt256723/couple-space-app/module/message/model"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

type fakeResolver struct {
	users map[string]*User
}

func (r fakeResolver) Resolve(_ context.Context, token string) (*User, error) {
	if u, ok := r.users[token]; ok {
		return u, nil
	}
	return nil, errors.New("bad token")
}

type fakeStore struct {
	mu           sync.Mutex
	roomByCouple map[int64]int64
	members      map[int64][]*User // coupleID -> 成员
	nextID       int64
	saved        []*msgmodel.Message
}

func (s *fakeStore) GetRoomForCouple(_ context.Context, coupleID int64) (int64, error) {
	if r, ok := s.roomByCouple[coupleID]; ok {
		return r, nil
	}
	return 0, errors.New("room not found")
}

func (s *fakeStore) GetPartner(_ context.Context, coupleID, excludingUserID int64) (*User, error) {
	for _, u := range s.members[coupleID] {
		if u.ID != excludingUserID {
			return u, nil
		}
	}
	return nil, errors.New("partner not found")
}

func (s *fakeStore) AppendMessage(_ context.Context, senderID, receiverID, roomID int64, content, messageType string) (*msgmodel.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if messageType == "" {
		messageType = "text"
	}
	s.nextID++
	m := &msgmodel.Message{
		ID:          s.nextID,
		Content:     content,
		MessageType: messageType,
		SenderID:    senderID,
		ReceiverID:  receiverID,
		RoomID:      roomID,
		CreatedAt:   time.Now(),
	}
	s.saved = append(s.saved, m)
	return m, nil
}

func (s *fakeStore) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

const (
	testCoupleID = int64(5)
	testRoomID   = int64(7)
)

// alice(1) 和 bob(2) 是一对，房间 7；carol(3) 未绑定。
func newTestServer(t *testing.T) (*Server, *fakeStore, *httptest.Server) {
	t.Helper()
	cid := testCoupleID
	alice := &User{ID: 1, Username: "alice", CoupleID: &cid}
	bob := &User{ID: 2, Username: "bob", CoupleID: &cid}
	carol := &User{ID: 3, Username: "carol"}

	store := &fakeStore{
		roomByCouple: map[int64]int64{testCoupleID: testRoomID},
		members:      map[int64][]*User{testCoupleID: {alice, bob}},
	}
	resolver := fakeResolver{users: map[string]*User{
		"tok-alice": alice,
		"tok-bob":   bob,
		"tok-carol": carol,
	}}

	srv := NewServer(resolver, store, Config{})
	g := gin.New()
	g.GET("/ws/chat", srv.HandleWS)
	ts := httptest.NewServer(g)
	t.Cleanup(ts.Close)
	return srv, store, ts
}

func dialWS(t *testing.T, ts *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat?token=" + token
	c, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func readFrame(t *testing.T, c *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := c.ReadMessage()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func writeFrame(t *testing.T, c *websocket.Conn, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, c.WriteMessage(websocket.TextMessage, b))
}

// 双方接入并消化掉握手期的 connected / user_online 帧。
func connectPair(t *testing.T, ts *httptest.Server) (alice, bob *websocket.Conn) {
	t.Helper()
	alice = dialWS(t, ts, "tok-alice")
	m := readFrame(t, alice)
	require.Equal(t, EventConnected, m["type"])
	require.Equal(t, float64(testRoomID), m["room_id"])

	bob = dialWS(t, ts, "tok-bob")
	m = readFrame(t, bob)
	require.Equal(t, EventConnected, m["type"])

	m = readFrame(t, alice)
	require.Equal(t, EventUserOnline, m["type"])
	require.Equal(t, float64(2), m["user_id"])
	require.Equal(t, "bob", m["username"])
	return alice, bob
}

func TestHandshakeRejectsBadToken(t *testing.T) {
	_, _, ts := newTestServer(t)

	c := dialWS(t, ts, "bogus")
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := c.ReadMessage()
	require.True(t, websocket.IsCloseError(err, CloseInvalidCredentials),
		"expected close %d, got %v", CloseInvalidCredentials, err)
}

func TestConnectJoinsRoomAndAnnouncesOnline(t *testing.T) {
	srv, _, ts := newTestServer(t)
	connectPair(t, ts)

	require.True(t, srv.Registry().IsOnline(1))
	require.True(t, srv.Registry().IsOnline(2))
	require.True(t, srv.Rooms().IsMember(1, testRoomID))
	require.True(t, srv.Rooms().IsMember(2, testRoomID))
}

func TestSendMessagePersistsAndDelivers(t *testing.T) {
	_, store, ts := newTestServer(t)
	alice, bob := connectPair(t, ts)

	writeFrame(t, bob, map[string]any{
		"type": EventSendMessage, "content": "早上好", "room_id": testRoomID,
	})

	// 发送方收到带服务端 id 的回显
	echo := readFrame(t, bob)
	require.Equal(t, EventNewMessage, echo["type"])
	em := echo["message"].(map[string]any)
	require.Equal(t, float64(1), em["id"])
	require.Equal(t, "早上好", em["content"])
	require.Equal(t, float64(2), em["sender_id"])
	require.Equal(t, float64(1), em["receiver_id"])

	// 对方收到同一帧
	got := readFrame(t, alice)
	require.Equal(t, EventNewMessage, got["type"])
	gm := got["message"].(map[string]any)
	require.Equal(t, float64(1), gm["id"])
	require.Equal(t, "早上好", gm["content"])

	require.Equal(t, 1, store.savedCount())
}

func TestSendMessageEmptyContentRepliesError(t *testing.T) {
	_, store, ts := newTestServer(t)
	_, bob := connectPair(t, ts)

	writeFrame(t, bob, map[string]any{
		"type": EventSendMessage, "content": "", "room_id": testRoomID,
	})
	m := readFrame(t, bob)
	require.Equal(t, EventError, m["type"])
	require.Equal(t, "消息内容或房间ID不能为空", m["message"])

	// 缺 room_id 同样报错
	writeFrame(t, bob, map[string]any{
		"type": EventSendMessage, "content": "hi",
	})
	m = readFrame(t, bob)
	require.Equal(t, EventError, m["type"])

	require.Equal(t, 0, store.savedCount())
}

func TestSendMessageForeignRoomSilentlyDropped(t *testing.T) {
	_, store, ts := newTestServer(t)
	alice, bob := connectPair(t, ts)

	// 不是自己情侣的房间，既不报错也不落库
	writeFrame(t, bob, map[string]any{
		"type": EventSendMessage, "content": "hi", "room_id": 999,
	})
	// 再发一条正常的，确认上一条没有产生任何帧
	writeFrame(t, bob, map[string]any{
		"type": EventSendMessage, "content": "hi", "room_id": testRoomID,
	})

	m := readFrame(t, bob)
	require.Equal(t, EventNewMessage, m["type"])
	m = readFrame(t, alice)
	require.Equal(t, EventNewMessage, m["type"])
	require.Equal(t, 1, store.savedCount())
}

func TestTypingRelayedToPartner(t *testing.T) {
	_, _, ts := newTestServer(t)
	alice, bob := connectPair(t, ts)

	writeFrame(t, bob, map[string]any{
		"type": EventTyping, "room_id": testRoomID, "is_typing": true,
	})

	m := readFrame(t, alice)
	require.Equal(t, EventUserTyping, m["type"])
	require.Equal(t, float64(2), m["user_id"])
	require.Equal(t, true, m["is_typing"])
}

func TestReadReceiptRelayedToPartner(t *testing.T) {
	_, _, ts := newTestServer(t)
	alice, bob := connectPair(t, ts)

	writeFrame(t, bob, map[string]any{
		"type": EventReadReceipt, "message_id": 9,
	})

	m := readFrame(t, alice)
	require.Equal(t, EventMessageRead, m["type"])
	require.Equal(t, float64(9), m["message_id"])
	require.Equal(t, float64(2), m["user_id"])
}

func TestPingPong(t *testing.T) {
	_, _, ts := newTestServer(t)
	_, bob := connectPair(t, ts)

	writeFrame(t, bob, map[string]any{"type": EventPing})
	m := readFrame(t, bob)
	require.Equal(t, EventPong, m["type"])
	require.NotEmpty(t, m["timestamp"])
}

func TestUnknownEventTypeRepliesError(t *testing.T) {
	_, _, ts := newTestServer(t)
	_, bob := connectPair(t, ts)

	writeFrame(t, bob, map[string]any{"type": "nope"})
	m := readFrame(t, bob)
	require.Equal(t, EventError, m["type"])
	require.Contains(t, m["message"], "未知的消息类型")
}

func TestMalformedFrameRepliesError(t *testing.T) {
	_, _, ts := newTestServer(t)
	_, bob := connectPair(t, ts)

	require.NoError(t, bob.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	m := readFrame(t, bob)
	require.Equal(t, EventError, m["type"])
}

func TestDisconnectBroadcastsOffline(t *testing.T) {
	srv, _, ts := newTestServer(t)
	alice, bob := connectPair(t, ts)

	require.NoError(t, bob.Close())

	m := readFrame(t, alice)
	require.Equal(t, EventUserOffline, m["type"])
	require.Equal(t, float64(2), m["user_id"])
	require.Equal(t, "bob", m["username"])

	require.Eventually(t, func() bool {
		return !srv.Registry().IsOnline(2) && !srv.Rooms().IsMember(2, testRoomID)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNewConnectionSupersedesOld(t *testing.T) {
	srv, _, ts := newTestServer(t)
	alice, bob := connectPair(t, ts)

	bob2 := dialWS(t, ts, "tok-bob")
	m := readFrame(t, bob2)
	require.Equal(t, EventConnected, m["type"])

	// 旧连接被请下线（正常关闭码）
	require.NoError(t, bob.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := bob.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure),
		"expected normal closure, got %v", err)

	// 用户整体仍在线，对方看到的是再次上线而不是下线
	m = readFrame(t, alice)
	require.Equal(t, EventUserOnline, m["type"])
	require.Equal(t, float64(2), m["user_id"])

	require.True(t, srv.Registry().IsOnline(2))
	require.True(t, srv.Rooms().IsMember(2, testRoomID))

	// 新连接照常收发
	writeFrame(t, bob2, map[string]any{"type": EventPing})
	m = readFrame(t, bob2)
	require.Equal(t, EventPong, m["type"])
}

func TestUnpairedUserHasNoRoom(t *testing.T) {
	srv, store, ts := newTestServer(t)

	carol := dialWS(t, ts, "tok-carol")

	// 没绑定情侣：不入房、没有 connected 确认帧；发消息静默丢弃，
	// 会话本身不受影响
	writeFrame(t, carol, map[string]any{
		"type": EventSendMessage, "content": "hello?", "room_id": testRoomID,
	})
	writeFrame(t, carol, map[string]any{"type": EventPing})

	m := readFrame(t, carol)
	require.Equal(t, EventPong, m["type"])
	require.True(t, srv.Registry().IsOnline(3))
	require.Equal(t, 0, store.savedCount())
}
