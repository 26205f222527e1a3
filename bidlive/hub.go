package bidlive

import (
	"encoding/json"
	"log"
	"sync"
)

// The hub fans bid events out to websocket watchers. Rooms are keyed by
// product id; a slow client is dropped rather than blocking the room.

type Client struct {
	Send chan []byte
	Room string
}

type broadcastMsg struct {
	Room string
	Data []byte
}

type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	done       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.Room] == nil {
				h.rooms[c.Room] = make(map[*Client]bool)
			}
			h.rooms[c.Room][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if conns := h.rooms[c.Room]; conns != nil {
				if conns[c] {
					delete(conns, c)
					close(c.Send)
				}
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.Room] {
				select {
				case c.Send <- m.Data:
				default:
					close(c.Send)
					delete(h.rooms[m.Room], c)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for room, conns := range h.rooms {
				for c := range conns {
					close(c.Send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

// Event is the payload pushed to watchers of a product.
type Event struct {
	Type      string  `json:"type"` // "bid_placed", "bid_accepted", "bid_rejected"
	ProductID string  `json:"productId"`
	BidID     string  `json:"bidId"`
	Amount    float64 `json:"amount"`
	Timestamp int64   `json:"timestamp"`
}

// Publish broadcasts an event to the product's room. Safe to call from any
// goroutine; drops the event when the hub is stopped.
func (h *Hub) Publish(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Println("bidlive: marshal event:", err)
		return
	}
	select {
	case h.broadcast <- broadcastMsg{Room: evt.ProductID, Data: data}:
	case <-h.done:
	}
}
