package server

import (
	"sync/atomic"
)

// Metrics 记录对局运行期的关键指标（用于监控与调试）
type Metrics struct {
	Iterations        int64 // 引擎循环次数
	MovesAccepted     int64 // 被接受的走子
	MovesRejected     int64 // 被静默拒绝的走子
	FramesDropped     int64 // 归属不符或无法解析而被丢弃的帧
	Broadcasts        int64 // 广播次数
	BroadcastFailures int64 // 广播写失败次数
	Connections       int64 // 已接入连接数
	Spectators        int64 // 其中的观战连接数
}

func (m *Metrics) IncIteration()        { m.add(&m.Iterations) }
func (m *Metrics) IncAccepted()         { m.add(&m.MovesAccepted) }
func (m *Metrics) IncRejected()         { m.add(&m.MovesRejected) }
func (m *Metrics) IncDropped()          { m.add(&m.FramesDropped) }
func (m *Metrics) IncBroadcast()        { m.add(&m.Broadcasts) }
func (m *Metrics) IncBroadcastFailure() { m.add(&m.BroadcastFailures) }

// IncConnection 记录一次接入
func (m *Metrics) IncConnection(role Role) {
	m.add(&m.Connections)
	if !role.IsPlayer() {
		m.add(&m.Spectators)
	}
}

func (m *Metrics) add(p *int64) { atomic.AddInt64(p, 1) }

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"iterations":         atomic.LoadInt64(&m.Iterations),
		"moves_accepted":     atomic.LoadInt64(&m.MovesAccepted),
		"moves_rejected":     atomic.LoadInt64(&m.MovesRejected),
		"frames_dropped":     atomic.LoadInt64(&m.FramesDropped),
		"broadcasts":         atomic.LoadInt64(&m.Broadcasts),
		"broadcast_failures": atomic.LoadInt64(&m.BroadcastFailures),
		"connections":        atomic.LoadInt64(&m.Connections),
		"spectators":         atomic.LoadInt64(&m.Spectators),
	}
}
