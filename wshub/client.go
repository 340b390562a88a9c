package wshub

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/oriumgames/titanium/reward"
)

// Client receives sync messages from a Hub.
type Client struct {
	conn *websocket.Conn
}

// Dial connects to the hub served at url, for example
// "ws://localhost:8081/rewards".
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("wshub: dial %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// Next blocks until the next sync message arrives and returns the ledger it
// carries.
func (c *Client) Next() (reward.Snapshot, error) {
	for {
		typ, b, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if typ != websocket.BinaryMessage {
			continue
		}
		msg, err := reward.DecodeSyncMessage(b)
		if err != nil {
			return nil, err
		}
		return msg.Snapshot()
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
