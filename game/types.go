package game

import (
	"fmt"
)

// BoardSize 棋盘边长（8x8）
const BoardSize = 8

// Piece 棋盘格子上的内容
type Piece int

const (
	Empty Piece = iota
	White
	Black
)

var pieceNames = [...]string{"Empty", "White", "Black"}

func (p Piece) String() string {
	if p < Empty || p > Black {
		return fmt.Sprintf("Piece(%d)", int(p))
	}
	return pieceNames[p]
}

// MarshalText 以名称编码（"Empty" / "White" / "Black"）
func (p Piece) MarshalText() ([]byte, error) {
	if p < Empty || p > Black {
		return nil, fmt.Errorf("invalid piece %d", int(p))
	}
	return []byte(pieceNames[p]), nil
}

func (p *Piece) UnmarshalText(b []byte) error {
	for i, name := range pieceNames {
		if string(b) == name {
			*p = Piece(i)
			return nil
		}
	}
	return fmt.Errorf("unknown piece %q", b)
}

// Side 对局一方。White 先手（第一个连接），Black 后手（第二个连接）
type Side int

const (
	SideWhite Side = iota
	SideBlack
)

func (s Side) String() string {
	switch s {
	case SideWhite:
		return "White"
	case SideBlack:
		return "Black"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

func (s Side) MarshalText() ([]byte, error) {
	if s != SideWhite && s != SideBlack {
		return nil, fmt.Errorf("invalid side %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "White":
		*s = SideWhite
	case "Black":
		*s = SideBlack
	default:
		return fmt.Errorf("unknown side %q", b)
	}
	return nil
}

// Piece 返回该方的棋子类型
func (s Side) Piece() Piece {
	if s == SideWhite {
		return White
	}
	return Black
}

// Opponent 返回对手
func (s Side) Opponent() Side {
	if s == SideWhite {
		return SideBlack
	}
	return SideWhite
}

// Position 棋盘坐标：X 为列，Y 为行，均在 [0,7]
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Valid 坐标是否在棋盘内
func (p Position) Valid() bool {
	return p.X >= 0 && p.X < BoardSize && p.Y >= 0 && p.Y < BoardSize
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Move 客户端声明的一次移动（带声明方）
type Move struct {
	Player Side     `json:"player"`
	From   Position `json:"from"`
	To     Position `json:"to"`
}

func (m Move) String() string {
	return fmt.Sprintf("%s %s->%s", m.Player, m.From, m.To)
}

// Board 8x8 棋盘，按 Board[y][x] 访问
type Board [BoardSize][BoardSize]Piece

// At 返回坐标处的棋子（调用方保证坐标合法）
func (b *Board) At(p Position) Piece {
	return b[p.Y][p.X]
}

func (b *Board) set(p Position, piece Piece) {
	b[p.Y][p.X] = piece
}
