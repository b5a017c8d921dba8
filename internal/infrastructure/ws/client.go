package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Conn is the coordinator-facing handle for one connected participant. The
// transport owns the connection; rooms record non-owning references.
type Conn interface {
	ID() string
	Send(msg *Envelope)
	Close() error
}

type Client struct {
	conn      *connWrapper
	send      chan *Envelope
	done      chan struct{}
	closeOnce sync.Once
	id        string
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: newConnWrapper(conn),
		send: make(chan *Envelope, 64), // buffered to avoid dead-locks on slow clients
		done: make(chan struct{}),
		id:   uuid.NewString(),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues an event for delivery. It never blocks: events for a closed or
// saturated connection are dropped.
func (c *Client) Send(msg *Envelope) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
	}
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return c.conn.Close()
}

// ReadPump decodes inbound envelopes and hands them to the coordinator. It
// runs until the connection drops, then triggers disconnect cleanup.
func (c *Client) ReadPump(coord *Coordinator) {
	defer func() {
		coord.Disconnect(c)
		_ = c.Close()
	}()

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				coord.logger.Debugf("ws read error (client %s): %v", c.id, err)
			}
			return
		}

		var in Inbound
		if err := json.Unmarshal(raw, &in); err != nil {
			coord.logger.Debugf("ws malformed event (client %s): %v", c.id, err)
			continue
		}

		coord.Dispatch(c, in)
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
