package server

import (
	"errors"
	"io"

	"go.uber.org/zap"

	"knightarena/game"
)

// RunIntake 单个玩家连接的读循环（独立协程）。
// 每读到一帧向 out 发送一个 Input；连接结束时发送 Close 并返回。
// out 满时发送阻塞，读循环随之暂停，不丢弃也不重排
func RunIntake(conn Conn, side game.Side, out chan<- Input, metrics *Metrics, log *zap.SugaredLogger) {
	log = log.With("conn", conn.ID(), "side", side.String())
	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Infow("player disconnected")
			} else {
				log.Warnw("read failed", "error", err)
			}
			out <- Input{Side: side, Close: true}
			return
		}
		if len(frame) == 0 {
			continue
		}
		out <- parseInput(frame, side, metrics, log)
	}
}

// parseInput 声明方与连接身份一致时才携带走子，否则为空输入
func parseInput(frame []byte, side game.Side, metrics *Metrics, log *zap.SugaredLogger) Input {
	var m game.Move
	if err := decodeFrame(frame, &m); err != nil {
		log.Debugw("dropping undecodable frame", "error", err)
		metrics.IncDropped()
		return Input{Side: side}
	}
	if m.Player != side {
		log.Debugw("dropping foreign move", "claimed", m.Player.String())
		metrics.IncDropped()
		return Input{Side: side}
	}
	return Input{Side: side, Move: &m}
}
