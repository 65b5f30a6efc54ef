package chat

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: make(map[int64][]string)}
}

func (r *recordingSender) Send(userID int64, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[userID] = append(r.sent[userID], string(payload))
}

func TestRoomJoinIsIdempotent(t *testing.T) {
	x := NewRoomIndex()
	x.Join(1, 10)
	x.Join(1, 10)
	x.Join(2, 10)

	got := x.Members(10)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	require.Equal(t, []int64{1, 2}, got)
}

func TestRoomLeaveUnknownIsNoop(t *testing.T) {
	x := NewRoomIndex()
	x.Leave(1, 10) // 房间不存在
	x.Join(1, 10)
	x.Leave(2, 10) // 人不在场
	require.Equal(t, []int64{1}, x.Members(10))

	x.Leave(1, 10)
	require.Empty(t, x.Members(10))
	// 重复离开
	x.Leave(1, 10)
}

func TestRoomMembersUnknownRoomIsEmpty(t *testing.T) {
	x := NewRoomIndex()
	require.NotNil(t, x.Members(999))
	require.Empty(t, x.Members(999))
}

func TestRoomIsMember(t *testing.T) {
	x := NewRoomIndex()
	x.Join(1, 10)
	require.True(t, x.IsMember(1, 10))
	require.False(t, x.IsMember(2, 10))
	require.False(t, x.IsMember(1, 11))
}

func TestRoomBroadcastExcludesSender(t *testing.T) {
	x := NewRoomIndex()
	x.Join(1, 10)
	x.Join(2, 10)
	x.Join(3, 99) // 别的房间收不到

	s := newRecordingSender()
	x.Broadcast(s, 10, []byte(`m`), 1)

	require.Empty(t, s.sent[1])
	require.Equal(t, []string{"m"}, s.sent[2])
	require.Empty(t, s.sent[3])
}

func TestRoomBroadcastNoExclude(t *testing.T) {
	x := NewRoomIndex()
	x.Join(1, 10)
	x.Join(2, 10)

	s := newRecordingSender()
	x.Broadcast(s, 10, []byte(`m`), NoExclude)

	require.Equal(t, []string{"m"}, s.sent[1])
	require.Equal(t, []string{"m"}, s.sent[2])
}
