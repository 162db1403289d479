package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/clevercards-backend/models"
)

// GormPersistence là PersistenceGateway chạy trên gorm (postgres khi chạy
// thật, sqlite in-memory trong test)
type GormPersistence struct {
	db *gorm.DB
}

func NewGormPersistence(db *gorm.DB) *GormPersistence {
	return &GormPersistence{db: db}
}

func (g *GormPersistence) CreateUser(ctx context.Context, user *models.User) error {
	if err := g.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("tạo user thất bại: %w", err)
	}
	return nil
}

func (g *GormPersistence) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := g.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("đọc user thất bại: %w", err)
	}
	return &user, nil
}

func (g *GormPersistence) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	// id sinh trong BeforeCreate và nằm ngay trong bản ghi, nên bước
	// "patch id ngược lại document" của bản Firestore cũ không còn cần
	if err := g.db.WithContext(ctx).Omit("Questions", "Author").Create(quiz).Error; err != nil {
		return fmt.Errorf("tạo quiz thất bại: %w", err)
	}
	return nil
}

func (g *GormPersistence) UpdateQuiz(ctx context.Context, id uuid.UUID, update QuizUpdate) error {
	// Chỉ update nhóm field metadata, id/author_id không bao giờ đổi
	result := g.db.WithContext(ctx).Model(&models.Quiz{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":           update.Title,
		"description":     update.Description,
		"is_public":       update.IsPublic,
		"cover_image_url": update.CoverImageURL,
	})
	if result.Error != nil {
		return fmt.Errorf("cập nhật quiz thất bại: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormPersistence) GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := g.db.WithContext(ctx).First(&quiz, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("đọc quiz thất bại: %w", err)
	}
	return &quiz, nil
}

func (g *GormPersistence) GetPublicQuizzes(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := g.db.WithContext(ctx).Where("is_public = ?", true).Find(&quizzes).Error; err != nil {
		return nil, fmt.Errorf("đọc danh sách quiz công khai thất bại: %w", err)
	}
	return quizzes, nil
}

func (g *GormPersistence) GetUserQuizzes(ctx context.Context, userID uuid.UUID) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := g.db.WithContext(ctx).
		Joins("JOIN user_quizzes ON user_quizzes.quiz_id = quizzes.id").
		Where("user_quizzes.user_id = ?", userID).
		Find(&quizzes).Error
	if err != nil {
		return nil, fmt.Errorf("đọc danh sách quiz của user thất bại: %w", err)
	}
	return quizzes, nil
}

func (g *GormPersistence) SearchPublicQuizzes(ctx context.Context, keyword string) ([]models.Quiz, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(keyword)) + "%"
	var quizzes []models.Quiz
	err := g.db.WithContext(ctx).
		Where("is_public = ?", true).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("title ASC").
		Find(&quizzes).Error
	if err != nil {
		return nil, fmt.Errorf("tìm kiếm quiz thất bại: %w", err)
	}
	return quizzes, nil
}

func (g *GormPersistence) AppendUserQuiz(ctx context.Context, userID, quizID uuid.UUID) error {
	// User và quiz đều phải tồn tại, không tạo bản ghi membership mồ côi
	var count int64
	if err := g.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("kiểm tra user thất bại: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	if err := g.db.WithContext(ctx).Model(&models.Quiz{}).Where("id = ?", quizID).Count(&count).Error; err != nil {
		return fmt.Errorf("kiểm tra quiz thất bại: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}

	// Set semantics phía server: khóa chính kép + ON CONFLICT DO NOTHING,
	// nên append đồng thời từ nhiều thiết bị không mất bản ghi nào
	entry := models.UserQuiz{UserID: userID, QuizID: quizID}
	if err := g.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
		return fmt.Errorf("gắn quiz vào user thất bại: %w", err)
	}
	return nil
}

func (g *GormPersistence) AddQuestions(ctx context.Context, quizID uuid.UUID, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	// Batch atomic: ghi tất cả hoặc không ghi gì
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quiz models.Quiz
		if err := tx.First(&quiz, "id = ?", quizID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		for i := range questions {
			questions[i].QuizID = quizID
			if err := tx.Omit("Quiz").Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ghi batch câu hỏi thất bại: %w", err)
	}
	return nil
}

func (g *GormPersistence) GetQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error) {
	// Sort theo text, không theo thứ tự nhập (giữ đúng hợp đồng cũ)
	var questions []models.Question
	err := g.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("text ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("đọc câu hỏi thất bại: %w", err)
	}
	return questions, nil
}
