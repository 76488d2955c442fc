package sdk

import (
	"context"

	"github.com/gorilla/websocket"
)

// Subscribe connects to the realtime channel. The returned channel is closed
// when ctx is cancelled or the connection drops.
func (c *Client) Subscribe(ctx context.Context) (<-chan Event, error) {
	wsURL, err := c.GetWebSocketURL("/ws")
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, 64)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(out)
		defer close(done)
		defer conn.Close()
		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
