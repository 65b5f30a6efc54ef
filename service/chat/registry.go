package chat

import (
	"sync"
)

// Registry 在线连接表：user -> 唯一存活连接。
// 不变式：任一时刻每个用户至多一条可投递连接；
// 同一用户新连接直接顶掉旧的（旧连接由调用方关闭）。
type Registry struct {
	mu     sync.RWMutex
	byUser map[int64]*Client
}

func NewRegistry() *Registry {
	return &Registry{byUser: make(map[int64]*Client)}
}

// Register installs the client as the sole live connection for its user.
// 返回被顶替的旧连接（可能为 nil），关闭动作留给调用方。
func (r *Registry) Register(c *Client) (prev *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev = r.byUser[c.UserID]
	if prev == c {
		return nil
	}
	r.byUser[c.UserID] = c
	return prev
}

// Unregister removes the mapping and reports whether it did.
// 幂等；并且只在表里还是这条连接时才删，防止旧连接的迟到清理
// 把新连接顶掉。c 传 nil 表示无条件删。
func (r *Registry) Unregister(userID int64, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byUser[userID]
	if !ok {
		return false
	}
	if c != nil && cur != c {
		return false
	}
	delete(r.byUser, userID)
	return true
}

// Send delivers the payload to the user's live connection, if any.
// 对方不在线是常态，不算错误，静默丢弃。
func (r *Registry) Send(userID int64, payload []byte) {
	r.mu.RLock()
	c := r.byUser[userID]
	r.mu.RUnlock()
	if c != nil {
		c.enqueue(payload)
	}
}

// IsOnline 纯查询。
func (r *Registry) IsOnline(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byUser[userID]
	return ok
}
