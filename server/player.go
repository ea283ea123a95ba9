package server

import "knightarena/game"

// Role 连接在对局中的身份：执白、执黑或观战（Side 为 nil）
type Role struct {
	Side *game.Side
}

// RoleFor 按连接顺序分配身份：第 1 个执白，第 2 个执黑，之后都是观战
func RoleFor(index int) Role {
	var side game.Side
	switch index {
	case 0:
		side = game.SideWhite
	case 1:
		side = game.SideBlack
	default:
		return Role{}
	}
	return Role{Side: &side}
}

// IsPlayer 是否为对局双方之一
func (r Role) IsPlayer() bool { return r.Side != nil }

func (r Role) String() string {
	if r.Side == nil {
		return "spectator"
	}
	return r.Side.String()
}
