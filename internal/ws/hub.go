package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"mcpanel/internal/events"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the frame written to every client.
type Message struct {
	Event string         `json:"event"`
	Data  events.Payload `json:"data"`
}

// Hub fans events out to every connected client. All client-set mutation
// happens on the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once

	log *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients: make(map[*Client]bool),
		// Unbuffered: Send returns only once the loop has taken the message,
		// so a client registered afterwards never sees it.
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        log.With("component", "ws"),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Info("Client connected", "id", client.id, "remote", client.remote)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Info("Client disconnected", "id", client.id)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
					h.log.Warn("Dropping slow client", "id", client.id)
				}
			}

		case reply := <-h.count:
			reply <- len(h.clients)

		case <-h.stop:
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		}
	}
}

// Stop disconnects every client and ends Run. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Send delivers event to every client connected at the time of the call.
// There is no acknowledgement and nothing is queued for later clients.
func (h *Hub) Send(event string, payload events.Payload) {
	if payload == nil {
		payload = events.Payload{}
	}
	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		h.log.Error("Failed to encode event", "event", event, "error", err)
		return
	}

	select {
	case h.broadcast <- data:
		h.log.Debug("Sent event", "event", event, "data", payload)
	case <-h.done:
	}
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := &Client{
		id:     uuid.NewString(),
		remote: r.RemoteAddr,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
