package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Question struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz   Quiz      `gorm:"foreignKey:QuizID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`

	Text           string `gorm:"type:text;not null" json:"text"`
	ImageURL       string `gorm:"type:text" json:"image_url"`
	Answer         string `gorm:"type:text;not null" json:"answer"`
	AnswerImageURL string `gorm:"type:text" json:"answer_image_url"`

	// Thời điểm tạo, giữ lại dù thứ tự hiển thị sort theo text
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
