/*
Package collab contains the real-time core of the editor: the Hub that owns all room
state and the Client sessions attached to it.

This file defines the Client struct, representing an active WebSocket connection. It
manages the connection's message loops (ReadPump and WritePump) and hands every decoded
event to the Hub.
*/
package collab

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"coderoom/internal/pkg/logx"
	"coderoom/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 1 << 20

	// number of outbound frames buffered per connection.
	sendQueueSize = 256
)

type sessionState int

const (
	stateUnjoined sessionState = iota
	stateJoined
	stateClosed
)

// Client is one websocket session.
type Client struct {
	// ID identifies the connection in logs.
	ID string

	hub  *Hub
	conn *websocket.Conn

	// send queues encoded frames for WritePump.
	send chan []byte

	logger zerolog.Logger

	// The fields below are guarded by hub.mu.
	state      sessionState
	roomID     string
	userName   string
	sendClosed bool
}

// NewClient wraps an upgraded connection. The caller registers it with the Hub and
// starts both pumps.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	id := randx.ConnectionID()

	return &Client{
		ID:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		state:  stateUnjoined,
		logger: logx.Logger().With().Str("client_id", id).Logger(),
	}
}

// targetRoom resolves the room an event applies to. Events are only accepted from a
// joined session and only for its own room; an omitted roomId means the session's room.
// Callers hold hub.mu.
func (c *Client) targetRoom(requested string) (string, bool) {
	if c.state != stateJoined {
		return "", false
	}
	if requested != "" && requested != c.roomID {
		return "", false
	}
	return c.roomID, true
}

// ReadPump reads frames in order and dispatches them. On exit the session is
// disconnected from the Hub and the socket closed.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Disconnect(c)
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(messageBytes, &env); err != nil {
			c.logger.Warn().Err(err).Int("size", len(messageBytes)).Msg("Client sent invalid JSON")
			continue
		}

		c.hub.Dispatch(c, env)
	}
}

// WritePump writes queued frames and periodic pings until the queue is closed or a
// write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit so ReadPump unblocks
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage returns false when the pump should stop.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
