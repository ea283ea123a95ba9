package server

import "knightarena/game"

// IntakeBuffer 每名玩家的输入通道容量。容量为 1 即背压：
// 引擎未取走上一步之前，下一步的发送会阻塞
const IntakeBuffer = 1

// Input 读协程转交给引擎的消息，三种形态：
//   - Move 非空：归属正确的一步
//   - Move 为空且 Close 为假：帧不属于该连接或无法解析，引擎忽略
//   - Close 为真：连接已断开
type Input struct {
	Side  game.Side
	Move  *game.Move
	Close bool
}
