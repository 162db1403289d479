package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/clevercards-backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("mở sqlite in-memory: %v", err)
	}
	// sqlite in-memory sống theo connection, giữ đúng một connection
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("lấy sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.Quiz{}, &models.Question{}, &models.UserQuiz{}, &models.PasswordReset{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, store *GormPersistence) *models.User {
	t.Helper()
	user := &models.User{FullName: "Nguyễn Văn A", Email: uuid.NewString() + "@test.vn"}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedQuiz(t *testing.T, store *GormPersistence, authorID uuid.UUID, title string) *models.Quiz {
	t.Helper()
	quiz := &models.Quiz{Title: title, AuthorID: authorID}
	if err := store.CreateQuiz(context.Background(), quiz); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	return quiz
}

func TestCreateQuizAssignsID(t *testing.T) {
	store := NewGormPersistence(newTestDB(t))
	user := seedUser(t, store)

	quiz := seedQuiz(t, store, user.ID, "Địa lý")
	if quiz.ID == uuid.Nil {
		t.Fatal("quiz.ID vẫn là Nil sau create")
	}

	got, err := store.GetQuiz(context.Background(), quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if got.Title != "Địa lý" || got.AuthorID != user.ID {
		t.Errorf("quiz đọc lại sai: %+v", got)
	}
}

func TestGetQuizNotFound(t *testing.T) {
	store := NewGormPersistence(newTestDB(t))
	if _, err := store.GetQuiz(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("muốn ErrNotFound, nhận %v", err)
	}
}

func TestUpdateQuiz(t *testing.T) {
	ctx := context.Background()
	store := NewGormPersistence(newTestDB(t))
	user := seedUser(t, store)
	quiz := seedQuiz(t, store, user.ID, "Toán")

	t.Run("update metadata giữ nguyên id và author", func(t *testing.T) {
		err := store.UpdateQuiz(ctx, quiz.ID, QuizUpdate{
			Title:         "Toán",
			Description:   "Ôn thi cuối kỳ",
			IsPublic:      true,
			CoverImageURL: "https://storage.test/cover.jpg",
		})
		if err != nil {
			t.Fatalf("UpdateQuiz: %v", err)
		}

		got, err := store.GetQuiz(ctx, quiz.ID)
		if err != nil {
			t.Fatalf("GetQuiz: %v", err)
		}
		if got.Description != "Ôn thi cuối kỳ" || !got.IsPublic || got.CoverImageURL == "" {
			t.Errorf("metadata chưa cập nhật: %+v", got)
		}
		if got.AuthorID != user.ID {
			t.Errorf("author_id bị đổi thành %v", got.AuthorID)
		}
	})

	t.Run("quiz không tồn tại", func(t *testing.T) {
		err := store.UpdateQuiz(ctx, uuid.New(), QuizUpdate{Title: "x"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("muốn ErrNotFound, nhận %v", err)
		}
	})
}

func TestAppendUserQuiz(t *testing.T) {
	ctx := context.Background()
	store := NewGormPersistence(newTestDB(t))
	user := seedUser(t, store)
	quiz := seedQuiz(t, store, user.ID, "Hóa")

	t.Run("append trùng giữ đúng một bản ghi", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			if err := store.AppendUserQuiz(ctx, user.ID, quiz.ID); err != nil {
				t.Fatalf("AppendUserQuiz lần %d: %v", i+1, err)
			}
		}

		quizzes, err := store.GetUserQuizzes(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserQuizzes: %v", err)
		}
		if len(quizzes) != 1 {
			t.Errorf("membership có %d bản ghi, muốn 1", len(quizzes))
		}
	})

	t.Run("append đồng thời không mất bản ghi nào", func(t *testing.T) {
		var quizzes []*models.Quiz
		for i := 0; i < 5; i++ {
			quizzes = append(quizzes, seedQuiz(t, store, user.ID, "Quiz đồng thời"))
		}

		var wg sync.WaitGroup
		errs := make(chan error, len(quizzes))
		for _, q := range quizzes {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- store.AppendUserQuiz(ctx, user.ID, q.ID)
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("append đồng thời: %v", err)
			}
		}

		got, err := store.GetUserQuizzes(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserQuizzes: %v", err)
		}
		// 1 quiz từ subtest trước + 5 quiz mới
		if len(got) != 6 {
			t.Errorf("membership có %d bản ghi, muốn 6", len(got))
		}
	})

	t.Run("user không tồn tại", func(t *testing.T) {
		err := store.AppendUserQuiz(ctx, uuid.New(), quiz.ID)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("muốn ErrNotFound, nhận %v", err)
		}
	})

	t.Run("quiz không tồn tại", func(t *testing.T) {
		err := store.AppendUserQuiz(ctx, user.ID, uuid.New())
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("muốn ErrNotFound, nhận %v", err)
		}
	})
}

func TestAddQuestions(t *testing.T) {
	ctx := context.Background()
	store := NewGormPersistence(newTestDB(t))
	user := seedUser(t, store)

	t.Run("batch rỗng là no-op", func(t *testing.T) {
		quiz := seedQuiz(t, store, user.ID, "Rỗng")
		if err := store.AddQuestions(ctx, quiz.ID, nil); err != nil {
			t.Fatalf("AddQuestions rỗng: %v", err)
		}
		got, _ := store.GetQuestions(ctx, quiz.ID)
		if len(got) != 0 {
			t.Errorf("quiz có %d câu hỏi, muốn 0", len(got))
		}
	})

	t.Run("ghi batch và đọc lại theo thứ tự text", func(t *testing.T) {
		quiz := seedQuiz(t, store, user.ID, "Địa lý")
		batch := []models.Question{
			{Text: "Châu lục nào lớn nhất?", Answer: "Châu Á"},
			{Text: "Biển nào mặn nhất?", Answer: "Biển Chết"},
			{Text: "Ai Cập nằm ở châu nào?", Answer: "Châu Phi"},
		}
		if err := store.AddQuestions(ctx, quiz.ID, batch); err != nil {
			t.Fatalf("AddQuestions: %v", err)
		}

		got, err := store.GetQuestions(ctx, quiz.ID)
		if err != nil {
			t.Fatalf("GetQuestions: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("quiz có %d câu hỏi, muốn 3", len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i-1].Text > got[i].Text {
				t.Errorf("câu hỏi chưa sort theo text: %q trước %q", got[i-1].Text, got[i].Text)
			}
		}
		for _, q := range got {
			if q.QuizID != quiz.ID {
				t.Errorf("quiz_id = %v, muốn %v", q.QuizID, quiz.ID)
			}
		}
	})

	t.Run("quiz không tồn tại thì không ghi gì", func(t *testing.T) {
		err := store.AddQuestions(ctx, uuid.New(), []models.Question{{Text: "x", Answer: "y"}})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("muốn ErrNotFound, nhận %v", err)
		}
	})

	t.Run("lỗi giữa batch thì rollback toàn bộ", func(t *testing.T) {
		quiz := seedQuiz(t, store, user.ID, "Rollback")
		dup := uuid.New()
		batch := []models.Question{
			{ID: dup, Text: "Câu 1", Answer: "A"},
			// Trùng khóa chính, insert thứ hai phải fail
			{ID: dup, Text: "Câu 2", Answer: "B"},
		}
		if err := store.AddQuestions(ctx, quiz.ID, batch); err == nil {
			t.Fatal("muốn lỗi khi batch có bản ghi trùng khóa")
		}

		got, err := store.GetQuestions(ctx, quiz.ID)
		if err != nil {
			t.Fatalf("GetQuestions: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("còn %d câu hỏi sau rollback, muốn 0", len(got))
		}
	})
}

func TestSearchPublicQuizzes(t *testing.T) {
	ctx := context.Background()
	store := NewGormPersistence(newTestDB(t))
	user := seedUser(t, store)

	mk := func(title, desc string, public bool) {
		quiz := seedQuiz(t, store, user.ID, title)
		if err := store.UpdateQuiz(ctx, quiz.ID, QuizUpdate{Title: title, Description: desc, IsPublic: public}); err != nil {
			t.Fatalf("UpdateQuiz: %v", err)
		}
	}
	mk("Lịch sử Việt Nam", "Từ thời Hùng Vương", true)
	mk("Toán cao cấp", "Giải tích và lịch sử toán học", true)
	mk("Lịch sử thế giới", "Quiz riêng tư", false)

	t.Run("khớp title hoặc description, không phân biệt hoa thường", func(t *testing.T) {
		got, err := store.SearchPublicQuizzes(ctx, "LỊCH SỬ")
		if err != nil {
			t.Fatalf("SearchPublicQuizzes: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("tìm thấy %d quiz, muốn 2 (quiz private phải bị loại)", len(got))
		}
		for _, q := range got {
			if !q.IsPublic {
				t.Errorf("kết quả chứa quiz private: %q", q.Title)
			}
		}
	})

	t.Run("không khớp gì", func(t *testing.T) {
		got, err := store.SearchPublicQuizzes(ctx, "thiên văn")
		if err != nil {
			t.Fatalf("SearchPublicQuizzes: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("tìm thấy %d quiz, muốn 0", len(got))
		}
	})
}

func TestGetPublicQuizzes(t *testing.T) {
	ctx := context.Background()
	store := NewGormPersistence(newTestDB(t))
	user := seedUser(t, store)

	public := seedQuiz(t, store, user.ID, "Công khai")
	if err := store.UpdateQuiz(ctx, public.ID, QuizUpdate{Title: "Công khai", IsPublic: true}); err != nil {
		t.Fatalf("UpdateQuiz: %v", err)
	}
	seedQuiz(t, store, user.ID, "Riêng tư")

	got, err := store.GetPublicQuizzes(ctx)
	if err != nil {
		t.Fatalf("GetPublicQuizzes: %v", err)
	}
	if len(got) != 1 || got[0].ID != public.ID {
		t.Errorf("danh sách public sai: %+v", got)
	}
}
