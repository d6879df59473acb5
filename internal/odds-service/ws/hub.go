package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait limita o tempo de escrita de um frame no peer.
const writeWait = 10 * time.Second

// conn embrulha a conexão com um mutex de escrita: broadcast e keepalive
// escrevem de goroutines diferentes.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(messageType, data)
}

// Hub gerencia conexões WebSocket e assinaturas por corrida
// subs: mapeia raceID para o conjunto de conexões inscritas
type Hub struct {
	upgrader  websocket.Upgrader
	keepalive time.Duration
	mu        sync.RWMutex
	// raceID -> set of connections
	subs map[string]map[*conn]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem
// (CORS) e intervalo de keepalive para canais ociosos.
func NewHub(allowOrigin func(r *http.Request) bool, keepalive time.Duration) *Hub {
	return &Hub{
		upgrader:  websocket.Upgrader{CheckOrigin: allowOrigin},
		keepalive: keepalive,
		subs:      make(map[string]map[*conn]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket.
// Permite subscribe/unsubscribe por corrida e responde a pings do
// cliente. Um ping de keepalive é enviado em canal ocioso para que o
// consumidor detecte falha silenciosa e reconecte; a desconexão remove a
// conexão de todas as assinaturas.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &conn{ws: wsConn}
	defer wsConn.Close()

	done := make(chan struct{})
	defer close(done)
	go h.keepaliveLoop(c, done)

	for {
		var msg ClientMsg
		if err := wsConn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			if _, ok := h.subs[msg.RaceID]; !ok {
				h.subs[msg.RaceID] = make(map[*conn]struct{})
			}
			h.subs[msg.RaceID][c] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.RaceID]; ok {
				delete(m, c)
				if len(m) == 0 {
					delete(h.subs, msg.RaceID)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = c.write(websocket.TextMessage, []byte(`{"type":"pong"}`))
		}
	}

	// Remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for id, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
	h.mu.Unlock()
}

// keepaliveLoop envia um ping de controle no intervalo configurado até a
// conexão encerrar.
func (h *Hub) keepaliveLoop(c *conn, done <-chan struct{}) {
	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Broadcast envia uma carga push para todos os clientes inscritos na
// corrida. raceID vazio (eventos de ranking) vai para todas as conexões.
func (h *Hub) Broadcast(raceID string, payload []byte) {
	h.mu.RLock()
	var conns []*conn
	if raceID == "" {
		seen := make(map[*conn]struct{})
		for _, set := range h.subs {
			for c := range set {
				if _, ok := seen[c]; !ok {
					seen[c] = struct{}{}
					conns = append(conns, c)
				}
			}
		}
	} else {
		for c := range h.subs[raceID] {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range conns {
		_ = c.write(websocket.TextMessage, payload)
	}
}
