package game

import (
	"github.com/samber/lo"
)

// WinThreshold 任意一方棋子数低于该值即判负
const WinThreshold = 4

// State 权威对局状态，也是广播给客户端的完整快照
type State struct {
	Board         Board  `json:"board"`
	CurrentPlayer Side   `json:"current_player"`
	MoveHistory   []Move `json:"move_history"`
	Finished      bool   `json:"finished"`
	Winner        *Side  `json:"winner"`
}

// NewState 返回初始布局：黑方占第 0-1 行，白方占第 6-7 行，各 12 枚交错排列，白方先手
func NewState() State {
	var b Board
	for x := 0; x < BoardSize; x++ {
		if x%2 == 1 {
			b[0][x] = Black
			b[7][x] = White
		} else {
			b[1][x] = Black
			b[6][x] = White
		}
	}
	return State{
		Board:         b,
		CurrentPlayer: SideWhite,
		MoveHistory:   []Move{},
	}
}

// Clone 深拷贝（历史与胜者指针不与原状态共享）
func (s *State) Clone() State {
	c := *s
	c.MoveHistory = append(make([]Move, 0, len(s.MoveHistory)), s.MoveHistory...)
	if s.Winner != nil {
		w := *s.Winner
		c.Winner = &w
	}
	return c
}

// Count 统计双方剩余棋子数
func (s *State) Count() (white, black int) {
	for y := range s.Board {
		row := s.Board[y][:]
		white += lo.Count(row, White)
		black += lo.Count(row, Black)
	}
	return white, black
}

// Apply 尝试执行一步移动。任何前置条件不满足都是静默的 no-op，返回是否被接受。
// 前置条件依次为：轮到该方、马步合法、起点非空、终点不是同类棋子。
// 落到对方棋子上即为吃子（直接覆盖）。
func (s *State) Apply(m Move) bool {
	// 终局后状态冻结
	if s.Finished {
		return false
	}
	if m.Player != s.CurrentPlayer {
		return false
	}
	if !IsLegal(m) {
		return false
	}
	from := s.Board.At(m.From)
	if from == Empty {
		return false
	}
	if s.Board.At(m.To) == from {
		return false
	}

	s.Board.set(m.From, Empty)
	s.Board.set(m.To, from)
	s.CurrentPlayer = s.CurrentPlayer.Opponent()
	s.MoveHistory = append(s.MoveHistory, m)
	s.updateOutcome()
	return true
}

// updateOutcome 重新计算胜负；同时低于阈值时白方胜
func (s *State) updateOutcome() {
	if s.Finished {
		return
	}
	white, black := s.Count()
	var winner Side
	switch {
	case black < WinThreshold:
		winner = SideWhite
	case white < WinThreshold:
		winner = SideBlack
	default:
		return
	}
	s.Finished = true
	s.Winner = &winner
}
