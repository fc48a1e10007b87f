// internal/handler/websocket_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"print-agent/internal/model"
	"print-agent/internal/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

// Event is the envelope pushed to websocket subscribers
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// wsClient is one connected frontend
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// WebSocketHandler pushes printer status and job events to connected
// frontends. It implements the print service's EventPublisher and
// subscribes to the connection manager's status transitions.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	logger   *utils.ServiceLogger

	mutex   sync.RWMutex
	clients map[string]*wsClient
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The agent binds to localhost; the POS frontend runs on a
			// different origin, so the default same-origin check would
			// reject every client.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  utils.NewServiceLogger(logger, "websocket-handler"),
		clients: make(map[string]*wsClient),
	}
}

// RegisterRoutes registers websocket routes
func (h *WebSocketHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/ws/events", h.HandleEvents)
}

// HandleEvents upgrades the connection and streams events until the
// client goes away
func (h *WebSocketHandler) HandleEvents(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket connection", zap.Error(err))
		return
	}

	client := &wsClient{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.mutex.Lock()
	h.clients[client.id] = client
	h.mutex.Unlock()

	h.logger.Info("Websocket client connected",
		zap.String("client_id", client.id),
		zap.String("remote_addr", c.Request.RemoteAddr),
	)

	go h.writePump(client)
	go h.readPump(client)
}

// PublishJob pushes a job lifecycle event to all subscribers
func (h *WebSocketHandler) PublishJob(job *model.PrintJob) {
	h.broadcast(Event{Type: "print_job", Data: job, Timestamp: time.Now()})
}

// PublishStatus pushes a printer status transition to all subscribers
func (h *WebSocketHandler) PublishStatus(status model.ConnectionStatus) {
	h.broadcast(Event{Type: "printer_status", Data: gin.H{"status": status}, Timestamp: time.Now()})
}

func (h *WebSocketHandler) broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to encode event", zap.Error(err))
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for _, client := range h.clients {
		select {
		case client.send <- payload:
		default:
			// Slow client; drop the event rather than block the
			// print pipeline.
		}
	}
}

func (h *WebSocketHandler) removeClient(client *wsClient) {
	h.mutex.Lock()
	if _, ok := h.clients[client.id]; ok {
		delete(h.clients, client.id)
		close(client.send)
	}
	h.mutex.Unlock()
	client.conn.Close()
}

// readPump drains client messages; the event stream is one-way, so
// anything received is discarded, but reads are required to process
// control frames.
func (h *WebSocketHandler) readPump(client *wsClient) {
	defer h.removeClient(client)

	client.conn.SetReadLimit(512)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Websocket read failed", zap.Error(err), zap.String("client_id", client.id))
			}
			return
		}
	}
}

func (h *WebSocketHandler) writePump(client *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
