package admin

import "github.com/gorilla/websocket"

// EventStream attaches a websocket to the live admin feed.
type EventStream interface {
	ServeWS(conn *websocket.Conn, email string)
}
