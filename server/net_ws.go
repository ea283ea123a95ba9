package server

import (
	"bytes"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsConn WebSocket 连接：一条文本消息即一帧
type wsConn struct {
	id string
	ws *websocket.Conn

	// gorilla 只允许一个并发写者
	wmu sync.Mutex
}

// NewWSConn 包装已升级的 WebSocket 连接
func NewWSConn(ws *websocket.Conn) Conn {
	ws.SetReadLimit(MaxFrameSize)
	return &wsConn{
		id: uuid.NewString(),
		ws: ws,
	}
}

func (c *wsConn) ID() string         { return c.id }
func (c *wsConn) RemoteAddr() string { return c.ws.RemoteAddr().String() }

func (c *wsConn) ReadFrame() ([]byte, error) {
	for {
		mt, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			return nil, err
		}
		if mt != websocket.TextMessage {
			continue
		}
		return bytes.TrimSpace(payload), nil
	}
}

func (c *wsConn) WriteFrame(v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.write(v)
}

func (c *wsConn) Exclusive(fn func(write func(v any) error) error) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return fn(c.write)
}

func (c *wsConn) write(v any) error {
	b, err := encodeFrame(v)
	if err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

func (c *wsConn) writeRaw(b []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

func (c *wsConn) Close() error { return c.ws.Close() }

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 观战页面可能来自任意来源
		return true
	},
}

// HandleWS WebSocket 接入，与 TCP 接入共用同一套角色分配
func (r *Room) HandleWS(w http.ResponseWriter, req *http.Request) {
	ws, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.log.Warnw("upgrade error", "remote", req.RemoteAddr, "error", err)
		return
	}
	// 握手失败时 Join 已记录并关闭连接
	_, _ = r.Join(NewWSConn(ws))
}
