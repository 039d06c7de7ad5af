package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/umichkisa/pocha-backend/pkg/logger"
)

// ClientMessage 클라이언트로부터 받은 메시지
type ClientMessage struct {
	Type   string   `json:"type"` // subscribe, unsubscribe
	Events []string `json:"events"`
}

// Envelope is the frame written to every socket
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client WebSocket 클라이언트
type Client struct {
	Hub   *Hub
	Conn  *Conn
	Email string
	Role  string
	Send  chan []byte

	// 구독 중인 이벤트 (비어 있으면 전체 수신)
	events map[string]bool
	// 수신 가능한 이벤트 상한 (nil이면 제한 없음)
	allowed map[string]bool
	mu      sync.RWMutex

	MessageCount  int       // 최근 1초간 받은 메시지 수
	LastResetTime time.Time // 마지막 카운터 리셋 시간
	RateMu        sync.Mutex
}

// NewClient creates a client with an empty subscription set
func NewClient(hub *Hub, conn *Conn, email, role string) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		Email:  email,
		Role:   role,
		Send:   make(chan []byte, 256),
		events: make(map[string]bool),
	}
}

// Restrict limits the client to the given events regardless of its subscriptions
func (c *Client) Restrict(events ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allowed = make(map[string]bool, len(events))
	for _, event := range events {
		c.allowed[event] = true
	}
}

// Wants reports whether the client receives the event
func (c *Client) Wants(event string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.allowed != nil && !c.allowed[event] {
		return false
	}
	if len(c.events) == 0 {
		return true
	}
	return c.events[event]
}

func (c *Client) subscribe(events []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range events {
		if e != "" {
			c.events[e] = true
		}
	}
}

func (c *Client) unsubscribe(events []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range events {
		delete(c.events, e)
	}
}

// Hub WebSocket 연결 관리자
type Hub struct {
	// 등록된 클라이언트들 (email -> []*Client, 멀티 디바이스 지원)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage 브로드캐스트 메시지
type BroadcastMessage struct {
	Event   string
	Message []byte
}

// NewHub Hub 생성
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
	}
}

// Run Hub 실행. done 이 닫히면 종료
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.Email] = append(h.clients[client.Email], client)
			sessions := len(h.clients[client.Email])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"email":          client.Email,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientList, ok := h.clients[client.Email]
	if !ok {
		return
	}
	newList := make([]*Client, 0, len(clientList))
	found := false
	for _, c := range clientList {
		if c == client {
			found = true
			continue
		}
		newList = append(newList, c)
	}
	if !found {
		return
	}
	if len(newList) == 0 {
		delete(h.clients, client.Email)
	} else {
		h.clients[client.Email] = newList
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"email":              client.Email,
		"remaining_sessions": len(newList),
	})
}

func (h *Hub) deliver(message *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for email, clientList := range h.clients {
		for _, client := range clientList {
			if !client.Wants(message.Event) {
				continue
			}
			select {
			case client.Send <- message.Message:
			default:
				// Send 채널이 막혀있음 - 비동기로 정리
				go h.Unregister(client)
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"email": email,
				})
			}
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for email, clientList := range h.clients {
		for _, client := range clientList {
			close(client.Send)
		}
		delete(h.clients, email)
	}
}

// Emit marshals payload into an envelope and queues it for every subscriber.
// A full broadcast queue drops the event.
func (h *Hub) Emit(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal event payload", err, map[string]interface{}{
			"event": event,
		})
		return err
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return err
	}
	h.Publish(event, frame)
	return nil
}

// Publish queues an already encoded frame
func (h *Hub) Publish(event string, frame []byte) {
	select {
	case h.broadcast <- &BroadcastMessage{Event: event, Message: frame}:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"event": event,
		})
	}
}

// Register 클라이언트 등록
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister 클라이언트 등록 해제
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsUserOnline 사용자 온라인 여부 확인
func (h *Hub) IsUserOnline(email string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[email]
	return ok
}

// ClientCount 현재 연결된 세션 수
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clientList := range h.clients {
		n += len(clientList)
	}
	return n
}

// HandleClientMessage 클라이언트 메시지 처리
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"email": client.Email,
			"count": count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"email": client.Email,
			"error": err.Error(),
		})
		return
	}

	switch msg.Type {
	case "subscribe":
		client.subscribe(msg.Events)
	case "unsubscribe":
		client.unsubscribe(msg.Events)
	default:
		logger.Debug("Ignoring client message", map[string]interface{}{
			"email": client.Email,
			"type":  msg.Type,
		})
	}
}
