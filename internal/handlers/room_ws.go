// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"

	"github.com/lichsuviet/minigames/internal/apperr"
	"github.com/lichsuviet/minigames/internal/hub"
	"github.com/lichsuviet/minigames/internal/middleware"
)

const (
	roomSubprotocol = "room"
	writeTimeout    = 5 * time.Second
	pingInterval    = 30 * time.Second
)

// clientMessage is what a client may send over the room socket.
type clientMessage struct {
	Type string `json:"type"`
}

// errWSLeft ends the stream after the player left through the socket.
var errWSLeft = errors.New("player left the room")

// RoomWSHandler streams a room's events to one seated player. The first
// message is a room_state snapshot; after that every hub event is forwarded.
// Clients may send {"type":"ready"}, {"type":"unready"}, {"type":"leave"} or {"type":"ping"}.
func RoomWSHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.PathValue("id")
		claims, ok := authorize(w, r, s.Sessions, roomID)
		if !ok {
			return
		}
		playerID := claims.PlayerID()
		if _, err := s.Rooms.Get(roomID); err != nil {
			writeError(w, err)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{roomSubprotocol},
			OriginPatterns: s.OriginPatterns,
		})
		if err != nil {
			s.Logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != roomSubprotocol {
			c.Close(BadSubprotocolError, "client must speak the room subprotocol")
			return
		}

		// Subscribe before taking the snapshot so no event falls in between.
		sub := s.Hub.Subscribe(roomID)
		defer s.Hub.Unsubscribe(sub)

		v, err := s.Rooms.Get(roomID)
		if err != nil {
			c.Close(InvalidRoomIDError, "room does not exist")
			return
		}
		middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, roomID, playerID)

		ctx := r.Context()
		if err := writeEvent(ctx, c, hub.Event{Type: "room_state", RoomID: roomID, Payload: v, At: time.Now()}); err != nil {
			middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, roomID, playerID, err)
			return
		}

		readDone := make(chan struct{})
		readErr := make(chan error, 1)
		go func() {
			readErr <- readPump(ctx, c, s, roomID, playerID)
			close(readDone)
		}()

		err = writePump(ctx, c, sub, readDone, s.Logger)
		select {
		case <-readDone:
			err = <-readErr
			if errors.Is(err, errWSLeft) {
				c.Close(PlayerLeftError, "left the room")
			}
		default:
			// Closing unblocks the pending read.
			if err == nil {
				c.Close(websocket.StatusNormalClosure, "room closed")
			} else {
				c.CloseNow()
			}
			<-readErr
		}
		middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, roomID, playerID, err)
	}
}

func writeEvent(ctx context.Context, c *websocket.Conn, ev hub.Event) error {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(wctx, c, ev)
}

// writePump forwards hub events until the room closes or the reader stops
// (both nil) or a write fails.
func writePump(ctx context.Context, c *websocket.Conn, sub *hub.Subscriber, readDone <-chan struct{}, logger *logrus.Logger) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-readDone:
			return nil
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			if err := writeEvent(ctx, c, ev); err != nil {
				logger.Warnf("Room %s: failed to write event %s: %v", sub.RoomID, ev.Type, err)
				return err
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

// readPump applies client messages until the socket closes.
func readPump(ctx context.Context, c *websocket.Conn, s *RoomServer, roomID, playerID string) error {
	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, c, &msg); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			return err
		}

		var err error
		switch msg.Type {
		case "ready", "unready":
			_, err = s.Rooms.SetReady(roomID, playerID, msg.Type == "ready")
		case "leave":
			if _, err = s.Rooms.Leave(roomID, playerID); err == nil {
				return errWSLeft
			}
		case "ping":
			err = writeEvent(ctx, c, hub.Event{Type: "pong", RoomID: roomID, At: time.Now()})
		default:
			err = apperr.Invalid("unknown message type %q", msg.Type)
		}
		if err != nil {
			if werr := writeEvent(ctx, c, errorEvent(roomID, err)); werr != nil {
				return werr
			}
		}
	}
}

func errorEvent(roomID string, err error) hub.Event {
	body := errorBody{Error: "internal_error", Message: "internal server error"}
	if e, ok := apperr.As(err); ok {
		body = errorBody{Error: e.Code, Message: err.Error()}
	}
	return hub.Event{Type: "error", RoomID: roomID, Payload: body, At: time.Now()}
}
