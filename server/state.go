package server

import (
	"sync"

	"knightarena/game"
)

// Game 进程内唯一的权威对局状态，读写锁保护。
// 只有引擎通过 Apply 修改；广播与握手只读取快照
type Game struct {
	mu    sync.RWMutex
	state game.State
}

func NewGame(s game.State) *Game {
	return &Game{state: s}
}

// Snapshot 读锁下的深拷贝
func (g *Game) Snapshot() game.State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state.Clone()
}

// Apply 写锁下执行一步，返回是否被接受
func (g *Game) Apply(m game.Move) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Apply(m)
}

// Outcome 对局是否结束以及胜者
func (g *Game) Outcome() (bool, *game.Side) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.state.Finished || g.state.Winner == nil {
		return g.state.Finished, nil
	}
	w := *g.state.Winner
	return true, &w
}
