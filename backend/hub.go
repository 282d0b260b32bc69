package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const wsIdlePingInterval = 30 * time.Second

type Hub struct {
	mu              sync.Mutex
	clients         map[*Client]struct{}
	broadcastState  chan GameState
	broadcastMove   chan movePayload
	broadcastReset  chan GameState
	broadcastConfig chan configPayload
	broadcastStats  chan EngineStats
}

type Client struct {
	hub  *Hub
	send chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type movePayload struct {
	State   GameState   `json:"state"`
	Outcome MoveOutcome `json:"outcome"`
	Move    string      `json:"move"`
	Auto    bool        `json:"auto"`
}

type configPayload struct {
	Difficulty Difficulty  `json:"difficulty"`
	Weights    EvalWeights `json:"weights"`
	AutoPlay   bool        `json:"auto_play"`
}

func NewHub() *Hub {
	return &Hub{
		clients:         make(map[*Client]struct{}),
		broadcastState:  make(chan GameState, 16),
		broadcastMove:   make(chan movePayload, 32),
		broadcastReset:  make(chan GameState, 8),
		broadcastConfig: make(chan configPayload, 8),
		broadcastStats:  make(chan EngineStats, 8),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case payload := <-h.broadcastState:
			h.sendAll(wsMessage{Type: "state", Payload: mustMarshal(payload)})
		case payload := <-h.broadcastMove:
			h.sendAll(wsMessage{Type: "move", Payload: mustMarshal(payload)})
		case payload := <-h.broadcastReset:
			h.sendAll(wsMessage{Type: "reset", Payload: mustMarshal(payload)})
		case payload := <-h.broadcastConfig:
			h.sendAll(wsMessage{Type: "config", Payload: mustMarshal(payload)})
		case payload := <-h.broadcastStats:
			h.sendAll(wsMessage{Type: "stats", Payload: mustMarshal(payload)})
		}
	}
}

func (h *Hub) sendAll(msg wsMessage) {
	h.mu.Lock()
	for client := range h.clients {
		client.sendJSON(msg)
	}
	h.mu.Unlock()
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

// writePump drains the client's send queue onto the socket. The idle timer
// resets on every write; when it expires a ping frame goes out so
// intermediaries keep the quiet connection open. Returns when the send
// queue closes or a write fails.
func (c *Client) writePump(conn *websocket.Conn, idleInterval time.Duration) error {
	idle := time.NewTimer(idleInterval)
	defer idle.Stop()
	ping := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(idleInterval)
		case <-idle.C:
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			idle.Reset(idleInterval)
		}
	}
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
