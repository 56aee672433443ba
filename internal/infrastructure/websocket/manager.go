package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"securehire/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBuffer     = 256
)

// Client represents a WebSocket connection client
type Client struct {
	UserID string
	Role   string
	Conn   *websocket.Conn
	Send   chan []byte

	ctx    context.Context
	cancel context.CancelFunc
}

func NewClient(parent context.Context, userID, role string, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(parent)
	return &Client{
		UserID: userID,
		Role:   role,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context is cancelled when the connection goes away.
func (c *Client) Context() context.Context {
	return c.ctx
}

// FrameHandler receives every client frame the manager does not answer itself.
type FrameHandler interface {
	HandleFrame(ctx context.Context, client *Client, frame WSMessage) error
	ClientClosed(client *Client)
}

// Manager manages all active WebSocket connections, one per user.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	handler    FrameHandler
	mutex      sync.RWMutex
	done       chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// SetHandler installs the frame handler. Call before Start.
func (m *Manager) SetHandler(h FrameHandler) {
	m.handler = h
}

// Start runs the manager's main loop in a goroutine
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.add(client)
			case client := <-m.Unregister:
				m.remove(client)
			case <-ctx.Done():
				close(m.done)
				m.closeAll()
				return
			}
		}
	}()
}

func (m *Manager) add(client *Client) {
	m.mutex.Lock()
	if old, ok := m.clients[client.UserID]; ok && old != client {
		old.cancel()
		close(old.Send)
		logger.Info("WebSocket: replacing connection of %s", client.UserID)
	}
	m.clients[client.UserID] = client
	m.mutex.Unlock()
	logger.Info("WebSocket: client registered: %s", client.UserID)
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	current, ok := m.clients[client.UserID]
	if ok && current == client {
		delete(m.clients, client.UserID)
		close(client.Send)
	}
	m.mutex.Unlock()
	client.cancel()

	if ok && current == client {
		if m.handler != nil {
			m.handler.ClientClosed(client)
		}
		logger.Info("WebSocket: client unregistered: %s", client.UserID)
	}
}

func (m *Manager) closeAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for id, c := range m.clients {
		c.cancel()
		close(c.Send)
		delete(m.clients, id)
	}
}

// RegisterClient hands client to the main loop. It is a no-op once the manager stopped.
func (m *Manager) RegisterClient(client *Client) {
	select {
	case m.Register <- client:
	case <-m.done:
		client.cancel()
	}
}

func (m *Manager) unregisterClient(client *Client) {
	select {
	case m.Unregister <- client:
	case <-m.done:
	}
}

// IsOnline reports whether userID has an open connection.
func (m *Manager) IsOnline(userID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// SendToUser queues message for userID. It returns false when the user is not connected
// or the client is too slow to keep up, in which case the frame is dropped.
func (m *Manager) SendToUser(userID string, message WSMessage) bool {
	payload, err := json.Marshal(message)
	if err != nil {
		logger.Error("WebSocket: failed to marshal %s frame for %s: %v", message.Type, userID, err)
		return false
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	client, ok := m.clients[userID]
	if !ok {
		return false
	}
	select {
	case client.Send <- payload:
		return true
	default:
		logger.Warn("WebSocket: send buffer full for %s, dropping %s frame", userID, message.Type)
		return false
	}
}

// Disconnect drops the user's connection, if any.
func (m *Manager) Disconnect(userID string) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()
	if ok {
		client.Conn.Close()
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.unregisterClient(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket: read error for %s: %v", c.UserID, err)
			}
			break
		}

		m.HandleClientMessage(c, message)
	}
}

// WritePump sends messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("WebSocket: write error for %s: %v", c.UserID, err)
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
