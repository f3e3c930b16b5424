package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/dom/uptask-server/internal/websocket"
	gorillaWS "github.com/gorilla/websocket"
)

// WSClient subscribes to a project event stream and buffers what arrives.
// The events channel is closed once the server ends the stream.
type WSClient struct {
	t         *testing.T
	conn      *gorillaWS.Conn
	events    chan *websocket.Message
	closeOnce sync.Once
}

// NewWSClient dials url and fails the test if the upgrade is refused
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	dialer := gorillaWS.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, resp, err := dialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("subscribe %s failed (status %d): %v", url, status, err)
	}

	c := &WSClient{
		t:      t,
		conn:   conn,
		events: make(chan *websocket.Message, 100),
	}
	go c.listen()
	t.Cleanup(c.Close)

	return c
}

func (c *WSClient) listen() {
	defer close(c.events)
	for {
		var msg websocket.Message
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			c.t.Errorf("undecodable event %q: %v", data, err)
			continue
		}
		c.events <- &msg
	}
}

// Close sends a normal close frame and drops the connection
func (c *WSClient) Close() {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		c.conn.WriteControl(gorillaWS.CloseMessage,
			gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""), deadline)
		c.conn.Close()
	})
}

// ExpectEvent returns the next event of the given type, skipping others
func (c *WSClient) ExpectEvent(eventType domain.EventType, timeout time.Duration) *websocket.Message {
	c.t.Helper()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case msg, ok := <-c.events:
			if !ok {
				c.t.Fatalf("stream closed while waiting for %s", eventType)
			}
			if msg.Type == eventType {
				return msg
			}
		case <-timer.C:
			c.t.Fatalf("no %s event within %s", eventType, timeout)
		}
	}
}

// ExpectClosed drains events until the server ends the stream
func (c *WSClient) ExpectClosed(timeout time.Duration) {
	c.t.Helper()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case _, ok := <-c.events:
			if !ok {
				return
			}
		case <-timer.C:
			c.t.Fatalf("stream still open after %s", timeout)
		}
	}
}
