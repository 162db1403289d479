package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string    `gorm:"size:150;not null" json:"full_name"`
	Email     string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text" json:"-"` // trống nếu login Google
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Quan hệ: quiz thuộc sở hữu (membership), khác với quiz do user tạo (author_id)
	Quizzes []Quiz `gorm:"many2many:user_quizzes" json:"quizzes,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserQuiz là bảng join user_quizzes, khóa chính kép để membership là set
// (append trùng quiz_id không tạo bản ghi mới)
type UserQuiz struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	QuizID uuid.UUID `gorm:"type:uuid;primaryKey" json:"quiz_id"`
}

func (UserQuiz) TableName() string {
	return "user_quizzes"
}
