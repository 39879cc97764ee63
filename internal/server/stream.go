package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"remap.dev/internal/log"
)

// buildEvent is one message on the event stream: a completed build or a build
// failure for a single entry point.
type buildEvent struct {
	Kind       string   `json:"kind"`
	EntryPoint string   `json:"entryPoint"`
	Files      []string `json:"files,omitempty"`
	Cached     bool     `json:"cached,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// subscriber is one connected websocket client. All writes to the connection
// happen on a single goroutine draining out, since the socket cannot be
// written to concurrently.
type subscriber struct {
	conn *websocket.Conn
	out  chan buildEvent
}

// eventHub fans build events out to connected websocket clients.
type eventHub struct {
	mux         sync.Mutex
	subscribers map[*subscriber]struct{}
}

var upgrader = websocket.Upgrader{
	// The dev server is local tooling; cross-origin pages on localhost are
	// expected (the bundle is served from a different port than the page).
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (hub *eventHub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Err(err, "Failed to upgrade websocket connection", log.Ctx{
				"remoteAddr": c.Request.RemoteAddr,
			})
			return
		}

		sub := &subscriber{
			conn: conn,
			out:  make(chan buildEvent, 16),
		}

		hub.mux.Lock()
		if hub.subscribers == nil {
			hub.subscribers = make(map[*subscriber]struct{})
		}
		hub.subscribers[sub] = struct{}{}
		hub.mux.Unlock()

		logger.Debug("Event stream subscriber connected", log.Ctx{
			"remoteAddr": c.Request.RemoteAddr,
		})

		// The only writer for this connection.
		go func() {
			for event := range sub.out {
				if err := sub.conn.WriteJSON(event); err != nil {
					hub.drop(sub)
					return
				}
			}
		}()

		// Drain the read side until the client goes away; events only flow
		// server to client.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					hub.drop(sub)
					return
				}
			}
		}()
	}
}

func (hub *eventHub) drop(sub *subscriber) {
	hub.mux.Lock()
	if _, ok := hub.subscribers[sub]; ok {
		delete(hub.subscribers, sub)
		close(sub.out)
	}
	hub.mux.Unlock()
	sub.conn.Close()
}

// Broadcast queues an event for every subscriber. A subscriber whose outbound
// buffer is full is too far behind to be useful and gets dropped.
func (hub *eventHub) Broadcast(event buildEvent) {
	hub.mux.Lock()
	defer hub.mux.Unlock()

	for sub := range hub.subscribers {
		select {
		case sub.out <- event:
		default:
			delete(hub.subscribers, sub)
			close(sub.out)
			sub.conn.Close()
		}
	}
}
