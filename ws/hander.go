package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/vnkhanh/clevercards-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // chỉ để phát triển, nên giới hạn ở production
	},
}

// Đẩy message JSON vào queue gửi của client; mọi write đều do writePump
// thực hiện, handler không ghi trực tiếp lên connection
func sendJSON(client *Client, data interface{}) {
	msg, err := json.Marshal(data)
	if err != nil {
		log.Println("Lỗi JSON marshal:", err)
		return
	}
	select {
	case client.Send <- msg:
	default:
	}
}

// WebSocket theo dõi một quiz đang soạn (trạng thái sinh ảnh bìa, publish).
// Sau khi register, đọc/ghi đều do pump của hub đảm nhiệm.
func HandleQuizWebSocket(c *gin.Context) {
	quizID := c.Param("id")
	token := c.Query("token")

	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Thiếu token"})
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token không hợp lệ hoặc hết hạn"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade thất bại:", err)
		return
	}

	client := H.Register(quizID, conn)
	sendJSON(client, gin.H{"type": "connected", "message": "Connected to quiz " + quizID})

	log.Printf("Quiz WS connected: quizID=%s, userID=%s\n", quizID, claims.UserID)
}

// WebSocket cho global (trang danh sách quiz công khai)
func HandleGlobalWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Thiếu token"})
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token không hợp lệ hoặc hết hạn"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade thất bại:", err)
		return
	}

	client := H.RegisterGlobal(conn)
	sendJSON(client, gin.H{"type": "connected", "message": "Connected to global WebSocket"})

	log.Printf("Global WS connected: userID=%s\n", claims.UserID)
}
