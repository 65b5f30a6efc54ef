package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// 测试里不跑写协程，直接从 send 队列里取帧断言。
func newTestClient(connID string, userID int64) *Client {
	return &Client{
		ConnID: connID,
		UserID: userID,
		send:   make(chan []byte, 8),
		quit:   make(chan struct{}),
	}
}

func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case p := <-c.send:
			out = append(out, p)
		default:
			return out
		}
	}
}

func TestRegistryRegisterAndSend(t *testing.T) {
	reg := NewRegistry()
	c := newTestClient("c1", 1)

	require.Nil(t, reg.Register(c))
	require.True(t, reg.IsOnline(1))

	reg.Send(1, []byte(`hello`))
	got := drain(c)
	require.Len(t, got, 1)
	require.Equal(t, "hello", string(got[0]))
}

func TestRegistrySendToOfflineUserIsNoop(t *testing.T) {
	reg := NewRegistry()
	// 没人注册也不 panic、不报错
	reg.Send(42, []byte(`x`))
	require.False(t, reg.IsOnline(42))
}

func TestRegistryRegisterSupersedes(t *testing.T) {
	reg := NewRegistry()
	old := newTestClient("old", 1)
	require.Nil(t, reg.Register(old))

	fresh := newTestClient("new", 1)
	prev := reg.Register(fresh)
	require.Same(t, old, prev)

	// 投递只走新连接
	reg.Send(1, []byte(`after`))
	require.Empty(t, drain(old))
	require.Len(t, drain(fresh), 1)
}

func TestRegistryUnregisterIsConditional(t *testing.T) {
	reg := NewRegistry()
	old := newTestClient("old", 1)
	fresh := newTestClient("new", 1)
	reg.Register(old)
	reg.Register(fresh)

	// 旧连接的迟到清理不能把新连接顶下线
	require.False(t, reg.Unregister(1, old))
	require.True(t, reg.IsOnline(1))

	require.True(t, reg.Unregister(1, fresh))
	require.False(t, reg.IsOnline(1))

	// 重复注销幂等
	require.False(t, reg.Unregister(1, fresh))
}

func TestRegistryUnregisterNilMatchesAny(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newTestClient("c", 7))
	require.True(t, reg.Unregister(7, nil))
	require.False(t, reg.IsOnline(7))
}
