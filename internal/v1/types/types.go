// Package types holds the identifiers and interfaces shared between the
// room, connection and session layers. Keeping the client abstraction
// here lets rooms talk to connected players without depending on the
// transport implementation.
package types

// PlayerID is the stable identity of a player, independent of any
// particular connection.
type PlayerID string

// RoomCode is the six-character token identifying a game session.
type RoomCode string

// ClientConn is the behavior a room needs from a connected player. The
// session package's WebSocket client implements it; tests substitute
// mocks.
type ClientConn interface {
	PlayerID() PlayerID
	Username() string
	// Send serializes an event frame and queues it for delivery.
	// Delivery failures are absorbed by the transport.
	Send(event string, payload any)
	// Disconnect forcefully closes the underlying connection.
	Disconnect()
}
