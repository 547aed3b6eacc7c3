package host

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"
)

// Client is a websocket client for the host message transport.
type Client struct {
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
}

// Dial connects to the host websocket endpoint. ctx bounds the handshake
// only; the connection itself lives until Close, so callers can pass a
// short-timeout context without killing the established connection.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ws dial: %w", err)
	}

	clientCtx, cancel := context.WithCancel(context.Background())
	return &Client{conn: conn, ctx: clientCtx, cancel: cancel}, nil
}

// Send writes one outbound message to the host.
func (c *Client) Send(msg Outbound) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal outbound: %w", err)
	}
	return c.conn.Write(c.ctx, websocket.MessageText, data)
}

// ReadSnapshot blocks until the host pushes the next full snapshot.
func (c *Client) ReadSnapshot() (Snapshot, error) {
	_, data, err := c.conn.Read(c.ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("ws read: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// Close gracefully closes the connection.
func (c *Client) Close() error {
	c.cancel()
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}
