package viewer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/zeusync/fieldofview/internal/core/observability/log"
	"github.com/zeusync/fieldofview/internal/core/vision"
	"github.com/zeusync/fieldofview/pkg/generic"
)

var _ vision.FrameObserver = (*Hub)(nil)

const (
	DefaultFrameBuffer  = 8
	DefaultClientBuffer = 16

	writeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Hub streams sensor frames to websocket clients as JSON.
//
// OnFrame is called on the tick goroutine and never blocks: when the hub
// falls behind, frames are dropped. Slow clients are disconnected.
type Hub struct {
	logger  log.Log
	frames  chan vision.Frame
	buffers *generic.Pool[*bytes.Buffer]
	router  *mux.Router

	mu      sync.Mutex
	clients map[*client]struct{}
	server  *http.Server

	dropped atomic.Uint64
	sent    atomic.Uint64
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

func NewHub(logger log.Log) *Hub {
	if logger == nil {
		logger = log.NewNop()
	}
	h := &Hub{
		logger:  logger.With(log.String("component", "viewer")),
		frames:  make(chan vision.Frame, DefaultFrameBuffer),
		buffers: generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset),
		router:  mux.NewRouter(),
		clients: make(map[*client]struct{}),
	}
	h.router.HandleFunc("/ws", h.handleWebSocket).Methods(http.MethodGet)
	h.router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	return h
}

// OnFrame queues a frame for broadcast.
func (h *Hub) OnFrame(f vision.Frame) {
	select {
	case h.frames <- f:
	default:
		h.dropped.Add(1)
	}
}

// Run broadcasts queued frames until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) error {
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			return nil
		case f := <-h.frames:
			if err := h.broadcast(f); err != nil {
				h.logger.Warn("encode frame", log.Error(err))
			}
		}
	}
}

func (h *Hub) broadcast(f vision.Frame) error {
	buf := h.buffers.Get()
	defer h.buffers.Put(buf)
	if err := json.NewEncoder(buf).Encode(NewFrameMessage(f)); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return nil
	}
	// each client gets its own copy since buf returns to the pool
	for c := range h.clients {
		msg := bytes.Clone(buf.Bytes())
		select {
		case c.send <- msg:
			h.sent.Add(1)
		default:
			h.logger.Warn("client too slow, disconnecting", log.String("client", c.id))
			delete(h.clients, c)
			c.close()
		}
	}
	return nil
}

// ServeHTTP upgrades /ws requests and answers /healthz.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, DefaultClientBuffer),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("viewer connected", log.String("client", c.id), log.String("remote", conn.RemoteAddr().String()))

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards client messages and unregisters the client on close.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.remove(c)
		h.logger.Info("viewer disconnected", log.String("client", c.id))
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns how many frames were discarded because the hub was busy.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Sent returns how many messages were queued to clients.
func (h *Hub) Sent() uint64 { return h.sent.Load() }

// Start listens on addr and serves in the background. It returns the bound
// address, which differs from addr when addr uses port 0.
func (h *Hub) Start(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	h.mu.Lock()
	h.server = srv
	h.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("viewer server stopped", log.Error(err))
		}
	}()
	h.logger.Info("viewer listening", log.String("addr", ln.Addr().String()))
	return ln.Addr(), nil
}

// Stop shuts the HTTP server down. Hijacked websocket connections are closed
// by Run when its context ends.
func (h *Hub) Stop(ctx context.Context) error {
	h.mu.Lock()
	srv := h.server
	h.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
