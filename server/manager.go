package server

import (
	"sync"
)

// Registry 所有连接的输出端（含观战），只追加、不移除。
// 广播只取读锁拿副本，写出时不持有登记锁
type Registry struct {
	mu    sync.RWMutex
	sinks []Conn
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Admit 在独占新连接写端的情况下登记并分配位置序号，随后执行握手。
// 登记先于握手快照，握手期间到来的广播排在握手之后写出，
// 因此新连接最后收到的状态不会落后。握手失败不释放序号
func (r *Registry) Admit(conn Conn, handshake func(index int, write func(v any) error) error) (int, error) {
	index := -1
	err := conn.Exclusive(func(write func(v any) error) error {
		index = r.add(conn)
		return handshake(index, write)
	})
	return index, err
}

func (r *Registry) add(conn Conn) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, conn)
	return len(r.sinks) - 1
}

// Sinks 返回当前连接列表的副本（按接入顺序）
func (r *Registry) Sinks() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Conn(nil), r.sinks...)
}

// Len 已登记的连接数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sinks)
}
