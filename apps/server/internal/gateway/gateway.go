package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"frontline-lite/apps/server/internal/arena"
	"frontline-lite/apps/server/internal/auth"
	"frontline-lite/wire"

	"github.com/gorilla/websocket"
)

const (
	readLimit    = 65536
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the game origin once it is configurable
	},
}

type outbound struct {
	messageType int
	data        []byte
}

// Connection is one player's websocket.
type Connection struct {
	ID       string
	PlayerID uint64
	Conn     *websocket.Conn
	Send     chan outbound
	Gateway  *Gateway
	Session  *arena.Session

	// text switches outgoing frames to protojson once the client speaks it.
	text   atomic.Bool
	errSeq atomic.Uint64

	sendMu     sync.Mutex
	sendClosed bool
}

// Gateway manages websocket connections and routes frames to arena sessions.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	nextConnID  uint64
	arena       *arena.Arena
	auth        auth.Service
}

func New(a *arena.Arena, authService auth.Service) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		arena:       a,
		auth:        authService,
	}
}

// HandleWebSocket authenticates the upgrade request and opens an arena
// session. The token comes from the Authorization header or ?token=.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = strings.TrimSpace(r.URL.Query().Get("token"))
	}
	playerID, _, ok := g.auth.ResolveSession(token)
	if !ok {
		auth.WriteError(w, http.StatusUnauthorized, "invalid session token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	c := &Connection{
		ID:       fmt.Sprintf("conn_%d", g.nextConnID),
		PlayerID: playerID,
		Conn:     conn,
		Send:     make(chan outbound, 256),
		Gateway:  g,
	}
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()
	if r.URL.Query().Get("format") == "json" {
		c.text.Store(true)
	}

	log.Printf("[Gateway] Client connected: %s (playerID=%d), total: %d", c.ID, playerID, total)
	go c.writePump()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	session, err := g.arena.Open(ctx, playerID, c.deliver)
	cancel()
	if err != nil {
		log.Printf("[Gateway] open session for player %d failed: %v", playerID, err)
		c.sendError("session unavailable")
		g.removeConnection(c)
		c.closeSend()
		return
	}
	c.Session = session
	go func() {
		// A reconnect elsewhere closes this session; drop the stale socket.
		<-session.Done()
		c.Conn.Close()
	}()
	go c.readPump()
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.arena.Close(c.PlayerID, c.Session.ID)
		c.Gateway.removeConnection(c)
		c.closeSend()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			return
		}
		c.handleMessage(messageType, message)
	}
}

func (c *Connection) handleMessage(messageType int, data []byte) {
	var (
		env *wire.Envelope
		err error
	)
	switch messageType {
	case websocket.BinaryMessage:
		env, err = wire.Unmarshal(data)
	case websocket.TextMessage:
		c.text.Store(true)
		env, err = wire.UnmarshalJSON(data)
	default:
		return
	}
	if err != nil {
		log.Printf("[Gateway] Failed to decode frame from %s: %v", c.ID, err)
		c.sendError("invalid message format")
		return
	}

	event, ok := c.toEvent(env)
	if !ok {
		return
	}
	if err := c.Session.SubmitEvent(event); err != nil && !errors.Is(err, arena.ErrSessionClosed) {
		c.sendError(err.Error())
	}
}

type spawnRequest struct {
	Tier int `json:"tier"`
	Base int `json:"base"`
}

type enemiesRequest struct {
	Despawn []uint64 `json:"despawn"`
}

func (c *Connection) toEvent(env *wire.Envelope) (arena.Event, bool) {
	switch env.Type {
	case wire.TypePerformance:
		u, skipped := wire.ParseMetricsUpdate(env.Payload)
		if len(skipped) > 0 {
			log.Printf("[Gateway] %s: dropped malformed fields %v", c.ID, skipped)
		}
		return arena.Event{Type: arena.EventPerformance, Update: u}, true
	case wire.TypeSpawn:
		var req spawnRequest
		if err := wire.DecodePayload(env.Payload, &req); err != nil {
			c.sendError("invalid spawn request")
			return arena.Event{}, false
		}
		return arena.Event{Type: arena.EventSpawnWave, Tier: req.Tier, Base: req.Base}, true
	case wire.TypeEnemies:
		var req enemiesRequest
		if env.Payload != nil {
			if err := wire.DecodePayload(env.Payload, &req); err != nil {
				c.sendError("invalid enemies request")
				return arena.Event{}, false
			}
		}
		if len(req.Despawn) > 0 {
			return arena.Event{Type: arena.EventDespawn, EnemyIDs: req.Despawn}, true
		}
		return arena.Event{Type: arena.EventEnemies}, true
	case wire.TypeInsights:
		return arena.Event{Type: arena.EventInsights}, true
	case wire.TypeProfile:
		return arena.Event{Type: arena.EventProfile}, true
	case wire.TypeReset:
		return arena.Event{Type: arena.EventReset}, true
	case wire.TypeHello:
		return arena.Event{}, false
	default:
		log.Printf("[Gateway] Unknown frame type from %s: %q", c.ID, env.Type)
		c.sendError(fmt.Sprintf("unknown frame type %q", env.Type))
		return arena.Event{}, false
	}
}

// deliver is the arena sink. It drops frames when the buffer is full.
func (c *Connection) deliver(env *wire.Envelope) {
	var (
		msg outbound
		err error
	)
	if c.text.Load() {
		msg.messageType = websocket.TextMessage
		msg.data, err = wire.MarshalJSON(env)
	} else {
		msg.messageType = websocket.BinaryMessage
		msg.data, err = wire.Marshal(env)
	}
	if err != nil {
		log.Printf("[Gateway] encode %s for %s failed: %v", env.Type, c.ID, err)
		return
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}
	select {
	case c.Send <- msg:
	default:
	}
}

func (c *Connection) sendError(msg string) {
	env, err := wire.New(wire.TypeError, c.errSeq.Add(1), time.Now().UnixMilli(), map[string]string{"message": msg})
	if err != nil {
		return
	}
	c.deliver(env)
}

func (c *Connection) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.Send)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(msg.messageType, msg.data); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.connections, c.ID)
	log.Printf("[Gateway] Client disconnected: %s, total: %d", c.ID, len(g.connections))
}

func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}
