package progress

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/vrmviewer/internal/loading"
)

// FeedMessage is the JSON form of a lifecycle event.
type FeedMessage struct {
	Kind    string  `json:"kind"`
	URL     string  `json:"url,omitempty"`
	Loaded  int     `json:"loaded"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
	Bytes   int64   `json:"bytes,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// NewFeedMessage converts an event.
func NewFeedMessage(ev loading.Event) FeedMessage {
	msg := FeedMessage{
		Kind:    ev.Kind.String(),
		URL:     ev.URL,
		Loaded:  ev.Loaded,
		Total:   ev.Total,
		Percent: Percent(ev.Loaded, ev.Total),
		Bytes:   ev.BytesLoaded,
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}
	return msg
}

const (
	// DefaultWriteTimeout bounds a single websocket write.
	DefaultWriteTimeout = 5 * time.Second
	clientQueue         = 32
)

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Feed broadcasts lifecycle events to websocket clients. Late joiners receive
// the most recent message first. Broadcast never blocks on a client: a client
// whose queue is full or whose write times out is dropped.
type Feed struct {
	upgrader     websocket.Upgrader
	log          *zap.Logger
	WriteTimeout time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]*feedClient
	last    []byte
}

// NewFeed creates an empty feed.
func NewFeed(log *zap.Logger) *Feed {
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:          log,
		WriteTimeout: DefaultWriteTimeout,
		clients:      make(map[*websocket.Conn]*feedClient),
	}
}

// Run forwards events until the channel is closed.
func (f *Feed) Run(events <-chan loading.Event) {
	for ev := range events {
		f.Broadcast(NewFeedMessage(ev))
	}
}

// Broadcast queues msg for every client.
func (f *Feed) Broadcast(msg FeedMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		f.log.Error("marshal feed message", zap.Error(err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.last = data
	for conn, c := range f.clients {
		select {
		case c.send <- data:
		default:
			f.log.Debug("feed client too slow, dropping")
			f.removeLocked(conn)
		}
	}
}

// ServeHTTP upgrades the request and keeps the client registered until it disconnects.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &feedClient{conn: conn, send: make(chan []byte, clientQueue)}
	f.mu.Lock()
	f.clients[conn] = c
	if f.last != nil {
		c.send <- f.last
	}
	f.mu.Unlock()

	f.log.Debug("feed client connected", zap.String("remote", r.RemoteAddr))
	go f.writeLoop(c)

	defer f.remove(conn)

	// Drain client frames until the connection closes
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writeLoop(c *feedClient) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(f.WriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			f.log.Debug("feed client write failed", zap.Error(err))
			f.remove(c.conn)
			return
		}
	}
}

func (f *Feed) remove(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeLocked(conn)
}

// removeLocked must be called with mu held.
func (f *Feed) removeLocked(conn *websocket.Conn) {
	c, ok := f.clients[conn]
	if !ok {
		return
	}
	delete(f.clients, conn)
	close(c.send)
	conn.Close()
}

// Clients returns the number of connected clients.
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}
