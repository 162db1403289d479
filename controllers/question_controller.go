package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/clevercards-backend/services"
	"github.com/vnkhanh/clevercards-backend/ws"
)

// AddQuestion thêm một câu hỏi vào phiên soạn quiz. Ảnh câu hỏi và ảnh
// đáp án (nếu có) upload song song, cả hai xong mới nhận câu hỏi.
// Câu hỏi chưa ghi DB cho đến khi gọi finish.
// POST /api/user/quizzes/:id/questions
func AddQuestion(c *gin.Context) {
	userID := c.GetString("user_id")

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quiz_id không hợp lệ"})
		return
	}

	quiz, err := assembly.Hydrate(c.Request.Context(), quizID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if quiz.AuthorID.String() != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không phải tác giả quiz này"})
		return
	}

	draft := services.QuestionDraft{
		Text:   c.PostForm("text"),
		Answer: c.PostForm("answer"),
	}

	if fh, err := c.FormFile("question_image"); err == nil {
		data, contentType, err := readFileHeader(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không đọc được ảnh câu hỏi"})
			return
		}
		draft.Image = &services.ImageUpload{Data: data, ContentType: contentType}
	}
	if fh, err := c.FormFile("answer_image"); err == nil {
		data, contentType, err := readFileHeader(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không đọc được ảnh đáp án"})
			return
		}
		draft.AnswerImage = &services.ImageUpload{Data: data, ContentType: contentType}
	}

	question, err := assembly.AppendQuestion(c.Request.Context(), quizID, draft)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Thêm câu hỏi thành công",
		"question": question,
		"total":    len(assembly.Questions(quizID)),
	})
}

// FinishQuiz commit batch câu hỏi của phiên soạn (tất cả hoặc không gì).
// Thất bại thì danh sách giữ nguyên trong phiên, gọi lại là retry.
// POST /api/user/quizzes/:id/finish
func FinishQuiz(c *gin.Context) {
	userID := c.GetString("user_id")

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quiz_id không hợp lệ"})
		return
	}

	quiz, err := assembly.Hydrate(c.Request.Context(), quizID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if quiz.AuthorID.String() != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không phải tác giả quiz này"})
		return
	}

	if err := assembly.Finish(c.Request.Context(), quizID); err != nil {
		respondServiceError(c, err)
		return
	}

	ws.SendQuizStatus(quizID.String(), "completed", "")
	if quiz.IsPublic {
		ws.BroadcastQuizListChanged()
	}

	c.JSON(http.StatusOK, gin.H{"message": "Hoàn tất tạo quiz"})
}

// GetQuizQuestions trả câu hỏi của quiz, sort theo text tăng dần
// GET /api/quizzes/:id/questions
func GetQuizQuestions(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quiz_id không hợp lệ"})
		return
	}

	quiz, err := assembly.Hydrate(c.Request.Context(), quizID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !quiz.IsPublic && c.GetString("user_id") != quiz.AuthorID.String() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Quiz này không công khai"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  quiz.Questions,
		"total": len(quiz.Questions),
	})
}
