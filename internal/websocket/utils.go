package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// ReadWait drops connections that send nothing for this long. Clients
	// ping well inside it.
	ReadWait = 5 * time.Minute
)

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

// NewError builds a typed ErrorResponse.
func NewError(errMsg string) ErrorResponse {
	return ErrorResponse{Event: EventError, Error: errMsg}
}

// ReadJSON reads and decodes a message into the provided structure.
// Idle connections are dropped after ReadWait.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	if err := conn.SetReadDeadline(time.Now().Add(ReadWait)); err != nil {
		return err
	}
	return conn.ReadJSON(v)
}
