package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knightarena/game"
)

// tcpClient 测试用客户端：按行读写 JSON
type tcpClient struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dial(t *testing.T, addr string) *tcpClient {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &tcpClient{t: t, conn: conn, r: bufio.NewReader(conn)}
}

func (c *tcpClient) read(v any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := c.r.ReadBytes('\n')
	require.NoError(c.t, err)
	require.NoError(c.t, json.Unmarshal(line, v))
}

func (c *tcpClient) role() *game.Side {
	c.t.Helper()
	var side *game.Side
	c.read(&side)
	return side
}

func (c *tcpClient) state() game.State {
	c.t.Helper()
	var s game.State
	c.read(&s)
	return s
}

func (c *tcpClient) send(frame string) {
	c.t.Helper()
	_, err := c.conn.Write([]byte(frame))
	require.NoError(c.t, err)
}

func startRoom(t *testing.T) (*Room, string) {
	t.Helper()
	room := NewRoom(testLogger())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	go room.Serve(ln)
	return room, ln.Addr().String()
}

func TestRoomHandshakeAssignsRoles(t *testing.T) {
	room, addr := startRoom(t)

	white := dial(t, addr)
	side := white.role()
	require.NotNil(t, side)
	assert.Equal(t, game.SideWhite, *side)
	assert.Equal(t, game.NewState(), white.state())

	black := dial(t, addr)
	side = black.role()
	require.NotNil(t, side)
	assert.Equal(t, game.SideBlack, *side)
	assert.Equal(t, game.NewState(), black.state())

	for i := 0; i < 2; i++ {
		spectator := dial(t, addr)
		assert.Nil(t, spectator.role())
		assert.Equal(t, game.NewState(), spectator.state())
	}

	// 登记发生在握手写完之后
	require.Eventually(t, func() bool { return room.Connections() == 4 }, 2*time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 2, atomic.LoadInt64(&room.Metrics().Spectators))
}

func TestRoomEndToEnd(t *testing.T) {
	room, addr := startRoom(t)

	white := dial(t, addr)
	white.role()
	white.state()
	black := dial(t, addr)
	black.role()
	black.state()
	spectator := dial(t, addr)
	spectator.role()
	spectator.state()

	done := make(chan error, 1)
	go func() {
		_, err := room.Run()
		done <- err
	}()

	white.send(whiteOpening)
	for _, c := range []*tcpClient{white, black, spectator} {
		s := c.state()
		assert.Equal(t, game.SideBlack, s.CurrentPlayer)
		require.Len(t, s.MoveHistory, 1)
		assert.Equal(t, game.Empty, s.Board.At(game.Position{X: 2, Y: 6}))
		assert.Equal(t, game.White, s.Board.At(game.Position{X: 0, Y: 5}))
	}

	// 黑方连接冒充白方：被丢弃，状态原样再次广播
	black.send(whiteSecond)
	for _, c := range []*tcpClient{white, black, spectator} {
		s := c.state()
		assert.Equal(t, game.SideBlack, s.CurrentPlayer)
		assert.Len(t, s.MoveHistory, 1)
	}

	// 白方在黑方回合走子：静默拒绝
	white.send(whiteSecond)
	for _, c := range []*tcpClient{white, black, spectator} {
		s := c.state()
		assert.Equal(t, game.SideBlack, s.CurrentPlayer)
		assert.Len(t, s.MoveHistory, 1)
	}

	black.send(blackOpening)
	for _, c := range []*tcpClient{white, black, spectator} {
		s := c.state()
		assert.Equal(t, game.SideWhite, s.CurrentPlayer)
		assert.Len(t, s.MoveHistory, 2)
	}

	// 任一玩家断开即中止整局
	require.NoError(t, black.conn.Close())
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrPlayerLeft))
	case <-time.After(2 * time.Second):
		require.FailNow(t, "engine did not abort")
	}
}

func TestRoomServeReturnsOnAcceptError(t *testing.T) {
	room := NewRoom(testLogger())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() { errc <- room.Serve(ln) }()
	require.NoError(t, ln.Close())

	select {
	case err := <-errc:
		assert.ErrorContains(t, err, "accept")
	case <-time.After(2 * time.Second):
		require.FailNow(t, "serve did not return")
	}
}

func TestRoomJoinHandshakeFailure(t *testing.T) {
	room := NewRoom(testLogger())
	broken := newRecordConn("broken")
	broken.err = errBrokenPipe

	role, err := room.Join(broken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBrokenPipe))
	assert.Equal(t, game.SideWhite, *role.Side)
	assert.Equal(t, 1, room.Connections())

	// 占用白方席位的连接已失效，引擎会看到白方离开
	select {
	case in := <-room.white:
		assert.True(t, in.Close)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no close signal for white")
	}

	role, err = room.Join(newRecordConn("next"))
	require.NoError(t, err)
	assert.Equal(t, game.SideBlack, *role.Side)
}

func TestRoomJoinDuringBroadcastGetsLatestState(t *testing.T) {
	room := NewRoom(testLogger())
	_, err := room.Join(newRecordConn("white"))
	require.NoError(t, err)

	black := newRecordConn("black")
	held, release := black.holdWrite(2)
	joined := make(chan error, 1)
	go func() {
		_, err := room.Join(black)
		joined <- err
	}()
	<-held

	// 握手的状态帧尚未写出时，对局前进并广播
	require.True(t, room.game.Apply(*move(game.SideWhite, 2, 6, 0, 5)))
	b := NewBroadcaster(room.game, room.registry, room.metrics, testLogger())
	broadcast := make(chan error, 1)
	go func() { broadcast <- b.Broadcast() }()

	select {
	case err := <-broadcast:
		require.FailNowf(t, "broadcast finished before handshake", "err=%v", err)
	case <-time.After(50 * time.Millisecond):
	}
	release()

	require.NoError(t, <-joined)
	require.NoError(t, <-broadcast)
	require.Equal(t, 3, black.count())
	last := black.last(t)
	assert.Equal(t, room.Snapshot(), last)
	assert.Len(t, last.MoveHistory, 1)
	assert.Equal(t, game.SideBlack, last.CurrentPlayer)
}
