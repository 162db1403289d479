package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vnkhanh/clevercards-backend/models"
)

// QuizUpdate gom các field được phép sửa sau khi quiz đã tạo.
// ID và AuthorID là bất biến, không bao giờ nằm trong update.
type QuizUpdate struct {
	Title         string
	Description   string
	IsPublic      bool
	CoverImageURL string
}

// PersistenceGateway trừu tượng hóa tầng lưu trữ (postgres qua gorm).
// AssemblyService nhận interface này qua constructor để test được bằng fake.
type PersistenceGateway interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)

	// CreateQuiz insert và gán id sinh ra vào quiz.ID
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	UpdateQuiz(ctx context.Context, id uuid.UUID, update QuizUpdate) error
	GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
	GetPublicQuizzes(ctx context.Context) ([]models.Quiz, error)
	GetUserQuizzes(ctx context.Context, userID uuid.UUID) ([]models.Quiz, error)
	SearchPublicQuizzes(ctx context.Context, keyword string) ([]models.Quiz, error)

	// AppendUserQuiz idempotent: append trùng giữ membership đúng một lần
	AppendUserQuiz(ctx context.Context, userID, quizID uuid.UUID) error

	// AddQuestions ghi cả batch hoặc không ghi gì (transaction)
	AddQuestions(ctx context.Context, quizID uuid.UUID, questions []models.Question) error
	// GetQuestions trả câu hỏi sort theo text tăng dần
	GetQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error)
}

// MediaGateway trừu tượng hóa blob storage + sinh ảnh AI + rút gọn link
type MediaGateway interface {
	Upload(ctx context.Context, data []byte, folder, contentType string) (string, error)
	// Delete xóa object theo public URL (dọn ảnh bìa cũ khi bị thay)
	Delete(ctx context.Context, publicURL string) error
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
	ShortenLink(ctx context.Context, longURL string) (string, error)
}
