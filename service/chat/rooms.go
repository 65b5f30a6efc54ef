package chat

import (
	"sync"
)

// NoExclude 广播时不排除任何成员。
const NoExclude int64 = 0

type payloadSender interface {
	Send(userID int64, payload []byte)
}

// RoomIndex 房间成员表：room -> 在场用户集合。
// 成员资格只在加入时保证连接存活；广播前要回查 Registry，
// 人在表里连接已断按静默跳过处理。
type RoomIndex struct {
	mu      sync.RWMutex
	members map[int64]map[int64]struct{}
}

func NewRoomIndex() *RoomIndex {
	return &RoomIndex{members: make(map[int64]map[int64]struct{})}
}

// Join 幂等加入。
func (x *RoomIndex) Join(userID, roomID int64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	m := x.members[roomID]
	if m == nil {
		m = make(map[int64]struct{})
		x.members[roomID] = m
	}
	m[userID] = struct{}{}
}

// Leave 不在场或房间不存在都是 no-op。空房间顺手清掉。
func (x *RoomIndex) Leave(userID, roomID int64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	m := x.members[roomID]
	if m == nil {
		return
	}
	delete(m, userID)
	if len(m) == 0 {
		delete(x.members, roomID)
	}
}

// Members returns a snapshot of the current member set.
// 未知房间返回空集，不报错。
func (x *RoomIndex) Members(roomID int64) []int64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	m := x.members[roomID]
	out := make([]int64, 0, len(m))
	for uid := range m {
		out = append(out, uid)
	}
	return out
}

// IsMember 查询某人是否在场。
func (x *RoomIndex) IsMember(userID, roomID int64) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.members[roomID][userID]
	return ok
}

// Broadcast 给房间里除 exclude 外的每位成员投递。
// 先取成员快照再逐个发，成员集合变更不会撕裂迭代；
// 单个接收方投不出去不影响其他人。
func (x *RoomIndex) Broadcast(reg payloadSender, roomID int64, payload []byte, exclude int64) {
	for _, uid := range x.Members(roomID) {
		if exclude != NoExclude && uid == exclude {
			continue
		}
		reg.Send(uid, payload)
	}
}
