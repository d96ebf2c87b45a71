// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room event stream.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	InvalidRoomIDError  = 3003 // Room in the WS URL no longer exists.
	PlayerLeftError     = 3004 // The player left the room from this connection.
)
