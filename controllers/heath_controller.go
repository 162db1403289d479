package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/clevercards-backend/config"
	"github.com/vnkhanh/clevercards-backend/ws"
)

func HealthCheck(c *gin.Context) {
	db := config.DB

	// Mặc định trạng thái OK
	response := gin.H{
		"status":    "ok",
		"message":   "Service is healthy",
		"timestamp": time.Now().Unix(),
		"db":        "ok",
		"redis":     "ok",
		"websocket": gin.H{
			"enabled": true,
			"stats":   ws.H.GetStats(),
		},
	}

	// Thử ping database
	sqlDB, err := db.DB()
	if err != nil {
		response["db"] = "error: cannot get DB instance"
		response["status"] = "degraded"
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		response["db"] = "error: cannot connect to DB"
		response["status"] = "degraded"
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	// Redis chết thì không chặn lịch sử đăng nhập, chỉ báo degraded
	if config.Redis != nil {
		if err := config.Redis.Ping(c.Request.Context()).Err(); err != nil {
			response["redis"] = "error: cannot connect to Redis"
			response["status"] = "degraded"
		}
	} else {
		response["redis"] = "disabled"
	}

	// Trả về nếu mọi thứ ổn
	c.JSON(http.StatusOK, response)
}
