package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func TestDBMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := &gorm.DB{}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	DBMiddleware(db)(c)

	got, ok := c.Get("db")
	if !ok {
		t.Fatal("context không có key db")
	}
	if got.(*gorm.DB) != db {
		t.Error("DB trong context khác instance được inject")
	}
}
