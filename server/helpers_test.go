package server

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"knightarena/game"
)

// 后台协程可能在测试结束后仍在打日志，这里统一用 no-op logger
func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// recordConn 记录写入帧的假连接；读端立即结束。
// holdAt > 0 时，第 holdAt 次写出先关闭 held，再等待 release 被关闭
type recordConn struct {
	id  string
	err error

	holdAt  int
	held    chan struct{}
	release chan struct{}

	wmu    sync.Mutex
	writes int

	mu     sync.Mutex
	frames [][]byte
}

func newRecordConn(id string) *recordConn {
	return &recordConn{id: id}
}

// holdWrite 让第 n 次写出停住，直到调用返回的函数
func (c *recordConn) holdWrite(n int) (held <-chan struct{}, release func()) {
	c.holdAt = n
	c.held = make(chan struct{})
	c.release = make(chan struct{})
	return c.held, func() { close(c.release) }
}

func (c *recordConn) ID() string                 { return c.id }
func (c *recordConn) RemoteAddr() string         { return "record:" + c.id }
func (c *recordConn) ReadFrame() ([]byte, error) { return nil, io.EOF }
func (c *recordConn) Close() error               { return nil }

func (c *recordConn) WriteFrame(v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.write(v)
}

func (c *recordConn) Exclusive(fn func(write func(v any) error) error) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return fn(c.write)
}

func (c *recordConn) write(v any) error {
	c.writes++
	if c.holdAt > 0 && c.writes == c.holdAt {
		close(c.held)
		<-c.release
	}
	if c.err != nil {
		return c.err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, b)
	return nil
}

func (c *recordConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *recordConn) last(t *testing.T) game.State {
	t.Helper()
	return c.state(t, c.count()-1)
}

func (c *recordConn) state(t *testing.T, i int) game.State {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.Less(t, i, len(c.frames))
	var s game.State
	require.NoError(t, json.Unmarshal(c.frames[i], &s))
	return s
}

var errBrokenPipe = errors.New("broken pipe")

func admit(t *testing.T, reg *Registry, conns ...Conn) {
	t.Helper()
	for _, c := range conns {
		_, err := reg.Admit(c, func(int, func(any) error) error { return nil })
		require.NoError(t, err)
	}
}

func move(side game.Side, fx, fy, tx, ty int) *game.Move {
	return &game.Move{
		Player: side,
		From:   game.Position{X: fx, Y: fy},
		To:     game.Position{X: tx, Y: ty},
	}
}
