package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 64
	broadcastSize  = 256
)

// FeedObserver is told when feed clients come and go.
type FeedObserver interface {
	FeedClientConnected()
	FeedClientDisconnected()
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// ScanFeed pushes every scan outcome to connected websocket clients. Clients
// that fall behind are dropped rather than slowing down the scanners.
type ScanFeed struct {
	upgrader websocket.Upgrader
	observer FeedObserver

	clients      map[*feedClient]struct{}
	clientsMutex sync.RWMutex
	broadcast    chan []byte
	register     chan *feedClient
	unregister   chan *feedClient
	done         chan struct{}
}

func NewScanFeed(allowedOrigins []string, observer FeedObserver) *ScanFeed {
	return &ScanFeed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		observer:   observer,
		clients:    make(map[*feedClient]struct{}),
		broadcast:  make(chan []byte, broadcastSize),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
		done:       make(chan struct{}),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// Run serves register, unregister and broadcast until ctx is done.
func (f *ScanFeed) Run(ctx context.Context) {
	defer close(f.done)

	for {
		select {
		case <-ctx.Done():
			f.clientsMutex.Lock()
			for client := range f.clients {
				f.removeLocked(client)
			}
			f.clientsMutex.Unlock()
			return
		case client := <-f.register:
			f.clientsMutex.Lock()
			f.clients[client] = struct{}{}
			f.clientsMutex.Unlock()
			if f.observer != nil {
				f.observer.FeedClientConnected()
			}
		case client := <-f.unregister:
			f.clientsMutex.Lock()
			f.removeLocked(client)
			f.clientsMutex.Unlock()
		case message := <-f.broadcast:
			f.clientsMutex.Lock()
			for client := range f.clients {
				select {
				case client.send <- message:
				default:
					f.removeLocked(client)
				}
			}
			f.clientsMutex.Unlock()
		}
	}
}

func (f *ScanFeed) removeLocked(client *feedClient) {
	if _, ok := f.clients[client]; !ok {
		return
	}
	delete(f.clients, client)
	close(client.send)
	if f.observer != nil {
		f.observer.FeedClientDisconnected()
	}
}

// ClientCount returns the number of connected clients.
func (f *ScanFeed) ClientCount() int {
	f.clientsMutex.RLock()
	defer f.clientsMutex.RUnlock()
	return len(f.clients)
}

// NotifyScan queues an event for broadcast. It never blocks; events are
// dropped when the queue is full.
func (f *ScanFeed) NotifyScan(event domain.ScanEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("failed to encode scan event", zap.Error(err))
		return
	}

	select {
	case f.broadcast <- message:
	default:
		zap.L().Warn("scan feed queue full, dropping event", zap.String("ticket_id", event.TicketID))
	}
}

// HandleScanFeed godoc
// @Summary      Live scan feed
// @Description  Upgrades to a websocket that receives one JSON message per scan attempt. Secret keys are never sent.
// @Tags         scans
// @Produce      json
// @Success      101  {object}  domain.ScanEvent
// @Failure      400  {object}  response.Err
// @Router       /scans/feed [get]
func (f *ScanFeed) HandleScanFeed(ctx *gin.Context) {
	conn, err := f.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		zap.L().Debug("scan feed upgrade failed", zap.Error(err))
		return
	}

	client := &feedClient{
		conn: conn,
		send: make(chan []byte, clientSendSize),
	}
	select {
	case f.register <- client:
	case <-f.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(f)
}

func (c *feedClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the peer going away. Incoming messages are
// ignored.
func (c *feedClient) readPump(f *ScanFeed) {
	defer func() {
		select {
		case f.unregister <- c:
		case <-f.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("scan feed client closed", zap.Error(err))
			}
			return
		}
	}
}
