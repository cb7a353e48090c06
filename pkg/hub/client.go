package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds what clients may send; they only send control frames
	maxMessageSize = 4 * 1024

	// sendBuffer is the per-client queue length in messages
	sendBuffer = 64
)

// Conn is the part of a websocket connection the pumps use. Both
// gofiber/websocket and gofiber/contrib/websocket connections satisfy it.
type Conn interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a single websocket connection.
type Client struct {
	id     string
	hub    *Hub
	conn   Conn
	format Format
	send   chan Message
}

// NewClient creates a new client receiving format and registers it with
// the hub. It returns nil if the hub has stopped.
func NewClient(hub *Hub, conn Conn, format Format) *Client {
	client := &Client{
		id:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		format: format,
		send:   make(chan Message, sendBuffer),
	}
	select {
	case hub.register <- client:
		return client
	case <-hub.done:
		return nil
	}
}

// ID returns the client's unique id.
func (c *Client) ID() string {
	return c.id
}

// Format returns the client's wire format.
func (c *Client) Format() Format {
	return c.format
}

// Run starts the client's read and write pumps.
// This should be called in the websocket handler; it blocks until the
// connection closes and both pumps have returned, so the handler may
// release the connection afterwards.
func (c *Client) Run() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump()
	}()
	c.readPump()
	<-done
}

// readPump reads until the connection fails, then unregisters.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Nothing is expected from clients; reading detects disconnection
		// and processes pongs.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump is the only writer on the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			wsType, data, ok := message.payload(c.format)
			if !ok {
				continue
			}
			if err := c.conn.WriteMessage(wsType, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
