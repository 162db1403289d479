package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/clevercards-backend/models"
)

// RecordPractice ghi nhận user vừa ôn tập một quiz (đẩy lên đầu danh
// sách gần đây, không nhân đôi nếu đã có)
// POST /api/user/quizzes/:id/practice
func RecordPractice(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quiz_id không hợp lệ"})
		return
	}

	// Quiz phải tồn tại
	if _, err := store.GetQuiz(c.Request.Context(), quizID); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := recent.Record(c.Request.Context(), userID, quizID.String()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được lịch sử ôn tập"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã ghi nhận lượt ôn tập"})
}

// GetRecentlyPracticed trả các quiz ôn gần đây, hydrate đầy đủ, giữ
// nguyên thứ tự gần nhất trước (không sort theo title như màn browse)
// GET /api/user/practice/recent
func GetRecentlyPracticed(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ids, err := recent.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không đọc được lịch sử ôn tập"})
		return
	}

	quizIDs := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		quizIDs = append(quizIDs, parsed)
	}

	quizzes := assembly.HydrateAll(c.Request.Context(), quizIDs)
	if quizzes == nil {
		quizzes = []models.Quiz{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  quizzes,
		"total": len(quizzes),
	})
}
