package server

import (
	"fmt"
	"net"

	"go.uber.org/zap"

	"knightarena/game"
)

// Room 进程内唯一的对局：权威状态、连接登记、双方输入通道与引擎
type Room struct {
	game     *Game
	registry *Registry
	white    chan Input
	black    chan Input

	metrics *Metrics
	engine  *Engine
	log     *zap.SugaredLogger
}

// NewRoom 以初始布局创建对局
func NewRoom(log *zap.SugaredLogger) *Room {
	return NewRoomWithState(game.NewState(), log)
}

// NewRoomWithState 以给定局面创建对局
func NewRoomWithState(s game.State, log *zap.SugaredLogger) *Room {
	r := &Room{
		game:     NewGame(s),
		registry: NewRegistry(),
		white:    make(chan Input, IntakeBuffer),
		black:    make(chan Input, IntakeBuffer),
		metrics:  &Metrics{},
		log:      log,
	}
	b := NewBroadcaster(r.game, r.registry, r.metrics, log)
	r.engine = NewEngine(r.game, r.white, r.black, b, r.metrics, log)
	return r
}

// Run 运行引擎主循环，见 Engine.Run
func (r *Room) Run() (game.Side, error) {
	return r.engine.Run()
}

// Snapshot 当前状态的只读副本
func (r *Room) Snapshot() game.State { return r.game.Snapshot() }

// Metrics 运行指标
func (r *Room) Metrics() *Metrics { return r.metrics }

// Connections 已登记的连接数
func (r *Room) Connections() int { return r.registry.Len() }

// Serve TCP 接入循环，伴随进程整个生命周期。
// 接入顺序即身份顺序；Accept 失败或握手失败都返回错误，由调用方结束进程
func (r *Room) Serve(l net.Listener) error {
	r.log.Infow("listening", "addr", l.Addr().String())
	for {
		c, err := l.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		if _, err := r.Join(NewLineConn(c)); err != nil {
			return err
		}
	}
}

// Join 接入一个连接：登记并按位置分配身份，先发送身份再发送当前状态，
// 然后为玩家启动读协程、为观战启动 drain。
// 握手失败时连接被关闭但序号已占用，玩家的读协程随即报告离开
func (r *Room) Join(conn Conn) (Role, error) {
	index, err := r.registry.Admit(conn, func(index int, write func(v any) error) error {
		if err := write(RoleFor(index).Side); err != nil {
			return err
		}
		return write(r.game.Snapshot())
	})
	role := RoleFor(index)
	r.metrics.IncConnection(role)
	log := r.log.With("conn", conn.ID(), "remote", conn.RemoteAddr(), "role", role.String())

	if err != nil {
		_ = conn.Close()
		err = fmt.Errorf("handshake with %s: %w", conn.RemoteAddr(), err)
		log.Warnw("handshake failed", "index", index, "error", err)
	} else {
		log.Infow("connection joined", "index", index)
	}

	if role.IsPlayer() {
		go RunIntake(conn, *role.Side, r.intake(*role.Side), r.metrics, r.log)
	} else {
		go r.drain(conn, log)
	}
	return role, err
}

func (r *Room) intake(side game.Side) chan<- Input {
	if side == game.SideWhite {
		return r.white
	}
	return r.black
}

// drain 观战连接发来的内容一律丢弃，只用于发现断开
func (r *Room) drain(conn Conn, log *zap.SugaredLogger) {
	for {
		if _, err := conn.ReadFrame(); err != nil {
			log.Infow("spectator left", "error", err)
			return
		}
	}
}
