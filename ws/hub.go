package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	Clients       map[string]map[*websocket.Conn]*Client // Theo từng quizID
	GlobalClients map[*websocket.Conn]*Client            // Dành cho broadcast chung
	Mutex         sync.RWMutex
}

var H = Hub{
	Clients:       make(map[string]map[*websocket.Conn]*Client),
	GlobalClients: make(map[*websocket.Conn]*Client),
}

// Struct gửi trạng thái của một quiz đang soạn (vd: đang sinh ảnh bìa)
type QuizStatusUpdate struct {
	QuizID string `json:"quiz_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Register theo quizID riêng. Mỗi connection có đúng một goroutine đọc
// (readPump) và một goroutine ghi (writePump); mọi message đi ra đều
// qua channel Send của client.
func (h *Hub) Register(quizID string, conn *websocket.Conn) *Client {
	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Mutex.Lock()
	if _, ok := h.Clients[quizID]; !ok {
		h.Clients[quizID] = make(map[*websocket.Conn]*Client)
	}
	h.Clients[quizID][conn] = client
	h.Mutex.Unlock()

	go h.readPump(quizID, conn)
	go h.writePump(client)

	return client
}

// Register global cho trang danh sách quiz công khai
func (h *Hub) RegisterGlobal(conn *websocket.Conn) *Client {
	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Mutex.Lock()
	h.GlobalClients[conn] = client
	h.Mutex.Unlock()

	go h.readGlobalPump(conn)
	go h.writePump(client)

	return client
}

// Broadcast theo quizID
func (h *Hub) Broadcast(quizID string, messageType int, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Clients[quizID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// Broadcast toàn bộ global clients (danh sách)
func (h *Hub) BroadcastGlobal(messageType int, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, client := range h.GlobalClients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// GetStats trả số liệu kết nối cho health check
func (h *Hub) GetStats() map[string]int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	quizConns := 0
	for _, clients := range h.Clients {
		quizConns += len(clients)
	}
	return map[string]int{
		"quiz_connections":   quizConns,
		"global_connections": len(h.GlobalClients),
	}
}

// Public function gọi gửi status quiz
func SendQuizStatus(quizID, status, errorMsg string) {
	update := QuizStatusUpdate{
		QuizID: quizID,
		Status: status,
		Error:  errorMsg,
	}
	data, err := json.Marshal(update)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.Broadcast(quizID, websocket.TextMessage, data)
}

// Public function gửi signal cập nhật danh sách quiz công khai
func BroadcastQuizListChanged() {
	data := []byte(`{"type": "quiz_list_changed"}`)
	H.BroadcastGlobal(websocket.TextMessage, data)
}

// Unregister client theo quizID
func (h *Hub) Unregister(quizID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Clients[quizID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Clients, quizID)
		}
	}
}

// Unregister global client
func (h *Hub) UnregisterGlobal(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if client, ok := h.GlobalClients[conn]; ok {
		close(client.Send)
		delete(h.GlobalClients, conn)
	}
}

// Read pump riêng theo quizID
func (h *Hub) readPump(quizID string, conn *websocket.Conn) {
	defer h.Unregister(quizID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Write pump: goroutine ghi duy nhất của connection
func (h *Hub) writePump(client *Client) {
	defer func() {
		client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		client.Conn.Close()
	}()
	for msg := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// Read pump global
func (h *Hub) readGlobalPump(conn *websocket.Conn) {
	defer h.UnregisterGlobal(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
