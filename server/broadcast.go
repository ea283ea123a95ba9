package server

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Broadcaster 把当前状态推送给所有已登记连接
type Broadcaster struct {
	game     *Game
	registry *Registry
	metrics  *Metrics
	log      *zap.SugaredLogger
}

func NewBroadcaster(g *Game, reg *Registry, metrics *Metrics, log *zap.SugaredLogger) *Broadcaster {
	return &Broadcaster{game: g, registry: reg, metrics: metrics, log: log}
}

// Broadcast 取快照后序列化一次，依次写给每个连接。
// 写失败不单独隔离：尝试完所有连接后返回合并的错误
func (b *Broadcaster) Broadcast() error {
	snap := b.game.Snapshot()
	frame, err := encodeFrame(snap)
	if err != nil {
		return err
	}

	var errs []error
	for _, conn := range b.registry.Sinks() {
		var werr error
		if rw, ok := conn.(rawWriter); ok {
			werr = rw.writeRaw(frame)
		} else {
			werr = conn.WriteFrame(snap)
		}
		if werr != nil {
			b.log.Warnw("broadcast write failed", "conn", conn.ID(), "remote", conn.RemoteAddr(), "error", werr)
			errs = append(errs, fmt.Errorf("conn %s: %w", conn.ID(), werr))
		}
	}
	if len(errs) > 0 {
		b.metrics.IncBroadcastFailure()
		return errors.Join(errs...)
	}
	b.metrics.IncBroadcast()
	return nil
}
