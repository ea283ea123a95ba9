package game

// IsLegal 纯函数：两端坐标在棋盘内，且位移为马步（L 形）
func IsLegal(m Move) bool {
	if !m.From.Valid() || !m.To.Valid() {
		return false
	}
	dx := abs(m.To.X - m.From.X)
	dy := abs(m.To.Y - m.From.Y)
	return min(dx, dy) == 1 && max(dx, dy) == 2
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
