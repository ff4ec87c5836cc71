package client

import (
	"context"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"roomchat/internal/proto"
)

// Conn is the channel primitive the session controller drives. The real
// implementation wraps a WebSocket; tests script their own.
type Conn interface {
	ReadEvent(ctx context.Context) (proto.Outbound, error)
	Write(ctx context.Context, v any) error
	Close() error
}

// DialFunc opens a fresh channel to the server.
type DialFunc func(ctx context.Context, url string) (Conn, error)

type wsConn struct {
	conn *websocket.Conn
}

// Dial opens a WebSocket connection to url.
func Dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

func (c *wsConn) ReadEvent(ctx context.Context) (proto.Outbound, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return proto.Outbound{}, err
	}
	return proto.ParseOutbound(data)
}

func (c *wsConn) Write(ctx context.Context, v any) error {
	return wsjson.Write(ctx, c.conn, v)
}

func (c *wsConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}
