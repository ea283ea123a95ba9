package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
)

// MaxFrameSize 单帧上限，超出视为读失败
const MaxFrameSize = 1 << 20

// ErrDecode 帧无法解析为期望的值
var ErrDecode = errors.New("decode frame")

// Conn 一条持久连接：按帧读写，每帧一个 JSON 值
type Conn interface {
	ID() string
	RemoteAddr() string
	// ReadFrame 阻塞读取下一帧；连接结束返回 io.EOF
	ReadFrame() ([]byte, error)
	// WriteFrame 编码并写出一帧，可被多个协程并发调用
	WriteFrame(v any) error
	// Exclusive 独占写端执行 fn，fn 通过 write 写帧；
	// 其他协程的写出排在 fn 返回之后
	Exclusive(fn func(write func(v any) error) error) error
	Close() error
}

// lineConn TCP 连接：以换行分隔的 UTF-8 文本帧
type lineConn struct {
	id   string
	conn net.Conn
	sc   *bufio.Scanner

	wmu sync.Mutex
}

// NewLineConn 包装一个 net.Conn
func NewLineConn(c net.Conn) Conn {
	sc := bufio.NewScanner(c)
	sc.Buffer(make([]byte, 0, 4096), MaxFrameSize)
	return &lineConn{
		id:   uuid.NewString(),
		conn: c,
		sc:   sc,
	}
}

func (c *lineConn) ID() string         { return c.id }
func (c *lineConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }

// ReadFrame 末尾没有换行的最后一帧照常交付，之后返回 io.EOF
func (c *lineConn) ReadFrame() ([]byte, error) {
	if !c.sc.Scan() {
		if err := c.sc.Err(); err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}
		return nil, io.EOF
	}
	return bytes.Clone(bytes.TrimSpace(c.sc.Bytes())), nil
}

func (c *lineConn) WriteFrame(v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.write(v)
}

func (c *lineConn) Exclusive(fn func(write func(v any) error) error) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return fn(c.write)
}

func (c *lineConn) write(v any) error {
	b, err := encodeFrame(v)
	if err != nil {
		return err
	}
	_, err = c.conn.Write(b)
	return err
}

func (c *lineConn) writeRaw(b []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, err := c.conn.Write(b)
	return err
}

func (c *lineConn) Close() error { return c.conn.Close() }

// encodeFrame 序列化为一行 JSON（带结尾换行）
func encodeFrame(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return append(b, '\n'), nil
}

// decodeFrame 将一帧解析为 v，失败时包装 ErrDecode
func decodeFrame(b []byte, v any) error {
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// rawWriter 可直接写出已编码帧的连接，广播时只序列化一次
type rawWriter interface {
	writeRaw(b []byte) error
}
