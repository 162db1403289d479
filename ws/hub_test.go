package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTestHub(t *testing.T, quizID string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		client := H.Register(quizID, conn)
		sendJSON(client, map[string]string{"type": "connected"})
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func TestQuizHub(t *testing.T) {
	conn := dialTestHub(t, "quiz-hub-test")

	// Greeting đi qua channel Send, tới trước mọi broadcast
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("đọc greeting: %v", err)
	}
	if !strings.Contains(string(msg), "connected") {
		t.Fatalf("greeting = %s", msg)
	}

	if got := H.GetStats()["quiz_connections"]; got != 1 {
		t.Errorf("quiz_connections = %d, muốn 1", got)
	}

	SendQuizStatus("quiz-hub-test", "generating_cover", "")

	_, msg, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("đọc status: %v", err)
	}
	var update QuizStatusUpdate
	if err := json.Unmarshal(msg, &update); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if update.QuizID != "quiz-hub-test" || update.Status != "generating_cover" {
		t.Errorf("update = %+v", update)
	}

	// Broadcast sang quiz khác không tới connection này
	SendQuizStatus("quiz-khac", "completed", "")
	SendQuizStatus("quiz-hub-test", "cover_ready", "")

	_, msg, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("đọc status thứ hai: %v", err)
	}
	if err := json.Unmarshal(msg, &update); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if update.Status != "cover_ready" {
		t.Errorf("status = %q, muốn cover_ready (message quiz khác bị lẫn vào)", update.Status)
	}
}
