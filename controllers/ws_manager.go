package controllers

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dojosgithub/the-minaret/models"
)

// Client is one user's open websocket connection.
type Client struct {
	Conn       *websocket.Conn
	Send       chan []byte
	UserID     string
	LastActive time.Time

	// closed is guarded by the manager mutex. Once set, Send is closed and
	// nothing may send on it again.
	closed bool
}

// WSManager tracks online users and pushes message events to them. Delivery
// is best effort: an offline recipient simply misses the push and sees the
// message on the next list call.
//
// Locking discipline: every close of a client's Send channel happens under
// the write lock, and every send on it happens under the read lock after
// checking the closed flag. The two therefore cannot interleave, which is
// what keeps a reconnecting user from panicking an in-flight publish.
type WSManager struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

func NewWSManager(logger *zap.Logger) *WSManager {
	return &WSManager{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// AddConnection registers the user's connection and starts its writer. Any
// previous connection for the same user is torn down first.
func (m *WSManager) AddConnection(userID string, conn *websocket.Conn) *Client {
	client := &Client{
		Conn:       conn,
		Send:       make(chan []byte, 16),
		UserID:     userID,
		LastActive: time.Now(),
	}

	m.mu.Lock()
	if old, ok := m.clients[userID]; ok {
		m.closeLocked(old)
	}
	m.clients[userID] = client
	m.mu.Unlock()

	m.logger.Info("websocket client connected", zap.String("user_id", userID))
	go m.writePump(client)
	return client
}

// RemoveConnection drops the user's connection if it is still the registered
// one.
func (m *WSManager) RemoveConnection(userID string, client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.clients[userID]; ok && current == client {
		delete(m.clients, userID)
		m.closeLocked(client)
		m.logger.Info("websocket client disconnected", zap.String("user_id", userID))
	}
}

// closeLocked tears a client down. Callers hold the write lock.
func (m *WSManager) closeLocked(client *Client) {
	if client.closed {
		return
	}
	client.closed = true
	close(client.Send)
	client.Conn.Close()
}

// PublishMessage implements services.MessagePublisher.
func (m *WSManager) PublishMessage(recipientID string, msg *models.Message) {
	payload, err := json.Marshal(map[string]interface{}{
		"event":   "message",
		"message": msg,
	})
	if err != nil {
		m.logger.Warn("marshaling message event", zap.Error(err))
		return
	}

	m.mu.RLock()
	client, online := m.clients[recipientID]
	delivered := false
	if online && !client.closed {
		select {
		case client.Send <- payload:
			delivered = true
		default:
		}
	}
	m.mu.RUnlock()

	if online && !delivered {
		// Slow consumer or already torn down; drop the connection rather
		// than block a send.
		m.RemoveConnection(recipientID, client)
	}
}

func (m *WSManager) writePump(client *Client) {
	for payload := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			m.logger.Warn("websocket write failed",
				zap.String("user_id", client.UserID),
				zap.Error(err))
			m.RemoveConnection(client.UserID, client)
			return
		}
	}
}
