package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/vnkhanh/clevercards-backend/models"
	"github.com/vnkhanh/clevercards-backend/services"
	"github.com/vnkhanh/clevercards-backend/ws"
)

// Đọc nội dung file multipart vào memory
func readFileHeader(fh *multipart.FileHeader) ([]byte, string, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fh.Header.Get("Content-Type"), nil
}

// Map lỗi từ service sang HTTP response
func respondServiceError(c *gin.Context, err error) {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message, "field": validation.Field})
		return
	}

	var notLinked *services.QuizNotLinkedError
	if errors.As(err, &notLinked) {
		// Shell đã tồn tại, caller chỉ cần retry bước link
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Quiz đã tạo nhưng chưa gắn vào tài khoản, hãy thử link lại",
			"code":    "quiz_not_linked",
			"quiz_id": notLinked.QuizID,
		})
		return
	}

	if errors.Is(err, services.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không phải tác giả quiz này"})
		return
	}

	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy quiz"})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

type CreateQuizInput struct {
	Title string `json:"title" binding:"required"`
}

// CreateQuiz tạo quiz shell (title + author)
// POST /api/user/quizzes
func CreateQuiz(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input CreateQuizInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := assembly.CreateShell(c.Request.Context(), input.Title, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tạo quiz thành công",
		"quiz":    quiz,
	})
}

// LinkQuiz retry bước gắn quiz vào user (sau lỗi quiz_not_linked)
// POST /api/user/quizzes/:id/link
func LinkQuiz(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quiz_id không hợp lệ"})
		return
	}

	if err := assembly.Relink(c.Request.Context(), userID, quizID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Gắn quiz vào tài khoản thành công"})
}

// UpdateQuizDetails cập nhật description/cờ public/ảnh bìa.
// Ảnh bìa: file "cover_image" hoặc field "generate_prompt" để sinh bằng AI.
// PUT /api/user/quizzes/:id/details
func UpdateQuizDetails(c *gin.Context) {
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

	description := c.PostForm("description")
	isPublic := c.PostForm("is_public") == "true"

	var cover *services.CoverSource
	if prompt := c.PostForm("generate_prompt"); prompt != "" {
		cover = &services.CoverSource{Prompt: prompt}
		ws.SendQuizStatus(quizID.String(), "generating_cover", "")
	} else if coverFile, err := c.FormFile("cover_image"); err == nil {
		data, contentType, err := readFileHeader(coverFile)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không đọc được file ảnh bìa"})
			return
		}
		cover = &services.CoverSource{Data: data, ContentType: contentType}
	}

	updated, err := assembly.SetDetails(c.Request.Context(), quizID, description, isPublic, cover)
	if err != nil {
		if cover != nil && cover.Prompt != "" {
			ws.SendQuizStatus(quizID.String(), "cover_failed", err.Error())
		}
		respondServiceError(c, err)
		return
	}

	if cover != nil && cover.Prompt != "" {
		ws.SendQuizStatus(quizID.String(), "cover_ready", "")
	}
	if updated.IsPublic {
		ws.BroadcastQuizListChanged()
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật quiz thành công",
		"quiz":    updated,
	})
}

// GetQuizDetail trả quiz đã hydrate đầy đủ (metadata + câu hỏi)
// GET /api/quizzes/:id
func GetQuizDetail(c *gin.Context) {
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

	// Quiz private chỉ tác giả xem được
	if !quiz.IsPublic && c.GetString("user_id") != quiz.AuthorID.String() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Quiz này không công khai"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quiz": quiz})
}

// GetPublicQuizzes trả danh sách quiz công khai, hydrate xong mới trả,
// sort theo title
// GET /api/quizzes/public
func GetPublicQuizzes(c *gin.Context) {
	quizzes, err := assembly.BrowsePublic(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  quizzes,
		"total": len(quizzes),
	})
}

// GetMyQuizzes trả danh sách quiz của user đang đăng nhập
// GET /api/user/quizzes
func GetMyQuizzes(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	quizzes, err := assembly.BrowseUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  quizzes,
		"total": len(quizzes),
	})
}

// SearchQuizzes tìm quiz công khai theo title/description.
// Chỉ trả metadata (không hydrate câu hỏi) vì màn kết quả không cần.
// GET /api/quizzes/search?q=
func SearchQuizzes(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu từ khóa tìm kiếm"})
		return
	}

	quizzes, err := store.SearchPublicQuizzes(c.Request.Context(), keyword)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if quizzes == nil {
		quizzes = []models.Quiz{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  quizzes,
		"total": len(quizzes),
	})
}

// ShareQuiz tạo link chia sẻ (rút gọn best-effort, lỗi thì trả link dài)
// GET /api/user/quizzes/:id/share
func ShareQuiz(c *gin.Context) {
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
	if !quiz.IsPublic && quiz.AuthorID.String() != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Quiz này không công khai"})
		return
	}

	longURL := fmt.Sprintf("https://clevercards.app/quiz/%s/%s", quiz.ID, slug.Make(quiz.Title))

	shortURL, err := media.ShortenLink(c.Request.Context(), longURL)
	if err != nil {
		// Best-effort: trả link dài khi rút gọn thất bại
		c.JSON(http.StatusOK, gin.H{
			"link":       longURL,
			"short_link": nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"link":       longURL,
		"short_link": shortURL,
	})
}
