// Package session - client.go
//
// This file implements the Client struct for a single player's
// WebSocket connection. Each client runs two goroutines: readPump
// continuously reads frames from the socket and hands them to the hub
// router, writePump drains the buffered send channel onto the wire.
//
// The wsConnection interface abstracts *websocket.Conn so tests can
// substitute mock connections, including ones that simulate errors and
// disconnects.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/openrook/chesshub/internal/v1/logging"
	"github.com/openrook/chesshub/internal/v1/metrics"
	"github.com/openrook/chesshub/internal/v1/protocol"
	"github.com/openrook/chesshub/internal/v1/types"
	"go.uber.org/zap"
)

// wsConnection is the subset of *websocket.Conn the client needs.
type wsConnection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	SetWriteDeadline(t time.Time) error
}

// clientRouter is what a client needs from the hub: frame routing and
// disconnect cleanup. Tests substitute a mock hub.
type clientRouter interface {
	route(ctx context.Context, client *Client, raw []byte)
	handleClientDisconnect(client *Client)
}

const sendBufferSize = 64

// Client is one player's connection. The send channel is buffered so a
// slow reader cannot block a room broadcast; when the buffer fills the
// frame is dropped and the slow client falls behind.
type Client struct {
	conn wsConnection
	send chan []byte
	hub  clientRouter

	id       types.PlayerID
	username string

	closeOnce sync.Once
}

func newClient(conn wsConnection, hub clientRouter, id types.PlayerID, username string) *Client {
	return &Client{
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		hub:      hub,
		id:       id,
		username: username,
	}
}

// PlayerID returns the stable identity behind this connection.
func (c *Client) PlayerID() types.PlayerID { return c.id }

// Username returns the display name supplied at connect time.
func (c *Client) Username() string { return c.username }

// Send encodes an event frame and queues it for delivery.
func (c *Client) Send(event string, payload any) {
	raw, err := protocol.Encode(event, payload)
	if err != nil {
		logging.Error(context.Background(), "Failed to encode event",
			zap.String("event", event), zap.Error(err))
		return
	}
	select {
	case c.send <- raw:
	default:
		logging.Warn(context.Background(), "Client send channel full, dropping frame",
			zap.String("player_id", string(c.id)), zap.String("event", event))
	}
}

// Disconnect closes the send channel, which lets writePump flush and
// send a close frame before the socket is torn down.
func (c *Client) Disconnect() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump processes incoming frames until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.handleClientDisconnect(c)
		c.conn.Close()
		metrics.DecConnection()
	}()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.hub.route(context.Background(), c, data)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	writeWait := 10 * time.Second

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logging.Error(context.Background(), "error writing message", zap.Error(err))
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
