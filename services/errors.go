package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound: user/quiz không tồn tại
var ErrNotFound = errors.New("không tìm thấy bản ghi")

// ErrForbidden: caller không phải tác giả của quiz
var ErrForbidden = errors.New("không có quyền trên quiz này")

// ValidationError: dữ liệu đầu vào thiếu hoặc sai, chưa gọi tới persistence
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// QuizNotLinkedError: quiz shell đã tạo xong nhưng chưa gắn vào danh sách
// quiz của user. Caller chỉ cần retry bước link, không tạo lại quiz.
type QuizNotLinkedError struct {
	QuizID uuid.UUID
	Err    error
}

func (e *QuizNotLinkedError) Error() string {
	return fmt.Sprintf("quiz %s đã tạo nhưng chưa link vào user: %v", e.QuizID, e.Err)
}

func (e *QuizNotLinkedError) Unwrap() error {
	return e.Err
}
