package server

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"knightarena/game"
)

var (
	// ErrPlayerLeft 任一玩家断开即终止整局
	ErrPlayerLeft = errors.New("player left the game")
	// ErrBroadcast 广播写失败
	ErrBroadcast = errors.New("broadcast failed")
	// ErrNoWinner 对局结束却没有胜者（状态被外部构造成不一致）
	ErrNoWinner = errors.New("game finished without a winner")
)

// Engine 唯一修改对局状态的协程：等待走子 → 执行 → 广播
type Engine struct {
	game  *Game
	white <-chan Input
	black <-chan Input

	broadcaster *Broadcaster
	metrics     *Metrics
	log         *zap.SugaredLogger
}

func NewEngine(g *Game, white, black <-chan Input, b *Broadcaster, metrics *Metrics, log *zap.SugaredLogger) *Engine {
	return &Engine{
		game:        g,
		white:       white,
		black:       black,
		broadcaster: b,
		metrics:     metrics,
		log:         log,
	}
}

// Run 阻塞运行主循环，直到对局结束（返回胜者）或中止（返回错误）。
// 每次迭代至多执行一步；两个通道同时就绪时选择哪一个不做保证
func (e *Engine) Run() (game.Side, error) {
	for {
		if finished, winner := e.game.Outcome(); finished {
			if winner == nil {
				return 0, ErrNoWinner
			}
			e.log.Infow("game finished", "winner", winner.String())
			return *winner, nil
		}

		var in Input
		select {
		case in = <-e.white:
		case in = <-e.black:
		}

		if err := e.step(in); err != nil {
			return 0, err
		}
	}
}

// step 处理一条输入并广播（无论走子是否被接受）
func (e *Engine) step(in Input) error {
	e.metrics.IncIteration()

	if in.Close {
		e.log.Errorw("player left, aborting game", "side", in.Side.String())
		return fmt.Errorf("%w: %s", ErrPlayerLeft, in.Side)
	}

	if in.Move != nil {
		if e.game.Apply(*in.Move) {
			e.metrics.IncAccepted()
			e.log.Infow("move accepted", "move", in.Move.String())
		} else {
			e.metrics.IncRejected()
			e.log.Debugw("move rejected", "move", in.Move.String())
		}
	}

	if err := e.broadcaster.Broadcast(); err != nil {
		return fmt.Errorf("%w: %w", ErrBroadcast, err)
	}
	return nil
}
