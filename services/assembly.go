package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vnkhanh/clevercards-backend/models"
)

// Trạng thái của một phiên soạn quiz:
//
//	shell --SetDetails--> detailed --Finish--> complete
//
// Shell tạo xong là quiz đã tồn tại trong DB; detailed là đã có
// description/ảnh bìa/cờ public; complete là batch câu hỏi đã ghi xong.
type SessionState string

const (
	StateShell    SessionState = "shell"
	StateDetailed SessionState = "detailed"
	StateComplete SessionState = "complete"
)

type quizSession struct {
	state     SessionState
	quiz      models.Quiz
	questions []models.Question
}

// CoverSource mô tả nguồn ảnh bìa: upload sẵn (Data) hoặc sinh bằng AI (Prompt)
type CoverSource struct {
	Data        []byte
	ContentType string
	Prompt      string
}

// ImageUpload là một ảnh đính kèm câu hỏi/đáp án
type ImageUpload struct {
	Data        []byte
	ContentType string
}

// QuestionDraft là câu hỏi đang soạn, chưa ghi xuống DB
type QuestionDraft struct {
	Text        string
	Answer      string
	Image       *ImageUpload
	AnswerImage *ImageUpload
}

// AssemblyService điều phối workflow tạo/đọc quiz nhiều bước.
// Gateway inject qua constructor, không dùng singleton, nên test được
// bằng fake. State phiên soạn giữ riêng trong service, không chia sẻ
// giữa các phiên.
type AssemblyService struct {
	store   PersistenceGateway
	media   MediaGateway
	timeout time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*quizSession
}

func NewAssemblyService(store PersistenceGateway, media MediaGateway) *AssemblyService {
	return &AssemblyService{
		store:    store,
		media:    media,
		timeout:  10 * time.Second,
		sessions: make(map[uuid.UUID]*quizSession),
	}
}

func titleTrim(s string) string {
	return strings.TrimSpace(s)
}

// callCtx chặn mọi lời gọi gateway bằng timeout, tránh treo vô hạn;
// timeout thì phiên đứng yên ở trạng thái trước đó
func (s *AssemblyService) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// CreateShell tạo quiz shell (title + author) rồi gắn id vào danh sách
// quiz của author. Nếu bước gắn thất bại, shell vẫn tồn tại và lỗi trả
// về là QuizNotLinkedError để caller retry riêng bước link.
func (s *AssemblyService) CreateShell(ctx context.Context, title string, authorID uuid.UUID) (*models.Quiz, error) {
	if titleTrim(title) == "" {
		return nil, &ValidationError{Field: "title", Message: "tiêu đề quiz không được để trống"}
	}
	if authorID == uuid.Nil {
		return nil, &ValidationError{Field: "author", Message: "chưa đăng nhập"}
	}

	quiz := models.Quiz{
		Title:    titleTrim(title),
		AuthorID: authorID,
	}

	cctx, cancel := s.callCtx(ctx)
	defer cancel()
	if err := s.store.CreateQuiz(cctx, &quiz); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[quiz.ID] = &quizSession{state: StateShell, quiz: quiz}
	s.mu.Unlock()

	lctx, lcancel := s.callCtx(ctx)
	defer lcancel()
	if err := s.store.AppendUserQuiz(lctx, authorID, quiz.ID); err != nil {
		return &quiz, &QuizNotLinkedError{QuizID: quiz.ID, Err: err}
	}

	return &quiz, nil
}

// Relink retry bước gắn quiz vào user sau QuizNotLinkedError.
// Chỉ tác giả được gắn quiz của mình: membership không phải kênh chia sẻ.
func (s *AssemblyService) Relink(ctx context.Context, userID, quizID uuid.UUID) error {
	gctx, gcancel := s.callCtx(ctx)
	quiz, err := s.store.GetQuiz(gctx, quizID)
	gcancel()
	if err != nil {
		return err
	}
	if quiz.AuthorID != userID {
		return ErrForbidden
	}

	cctx, cancel := s.callCtx(ctx)
	defer cancel()
	return s.store.AppendUserQuiz(cctx, userID, quizID)
}

// SetDetails cập nhật description/cờ public/ảnh bìa trong MỘT lời gọi
// update duy nhất: ảnh (upload hoặc AI) phải xong trước, URL của nó đi
// chung với các field còn lại. Phiên chỉ chuyển sang detailed khi update
// đó báo thành công.
func (s *AssemblyService) SetDetails(ctx context.Context, quizID uuid.UUID, description string, isPublic bool, cover *CoverSource) (*models.Quiz, error) {
	session, err := s.loadSession(ctx, quizID)
	if err != nil {
		return nil, err
	}

	oldCover := session.quiz.CoverImageURL
	coverURL := oldCover
	if cover != nil {
		data := cover.Data
		contentType := cover.ContentType
		if cover.Prompt != "" {
			gctx, gcancel := s.callCtx(ctx)
			generated, err := s.media.GenerateImage(gctx, cover.Prompt)
			gcancel()
			if err != nil {
				return nil, fmt.Errorf("sinh ảnh bìa thất bại: %w", err)
			}
			data = generated
			contentType = "image/png"
		}
		if len(data) > 0 {
			uctx, ucancel := s.callCtx(ctx)
			url, err := s.media.Upload(uctx, data, "cover_images", contentType)
			ucancel()
			if err != nil {
				return nil, fmt.Errorf("upload ảnh bìa thất bại: %w", err)
			}
			coverURL = url
		}
	}

	update := QuizUpdate{
		Title:         session.quiz.Title,
		Description:   description,
		IsPublic:      isPublic,
		CoverImageURL: coverURL,
	}

	cctx, cancel := s.callCtx(ctx)
	defer cancel()
	if err := s.store.UpdateQuiz(cctx, quizID, update); err != nil {
		return nil, err
	}

	// Ảnh bìa cũ đã bị thay, dọn rác best-effort
	if oldCover != "" && coverURL != oldCover {
		dctx, dcancel := s.callCtx(ctx)
		if err := s.media.Delete(dctx, oldCover); err != nil {
			log.Printf("xóa ảnh bìa cũ %s lỗi: %v", oldCover, err)
		}
		dcancel()
	}

	s.mu.Lock()
	session.quiz.Description = description
	session.quiz.IsPublic = isPublic
	session.quiz.CoverImageURL = coverURL
	session.state = StateDetailed
	quiz := session.quiz
	s.mu.Unlock()

	return &quiz, nil
}

// AppendQuestion upload ảnh câu hỏi và ảnh đáp án song song, đợi cả hai
// xong (barrier) rồi mới nhận câu hỏi vào danh sách của phiên. Chưa ghi
// DB ở bước này.
func (s *AssemblyService) AppendQuestion(ctx context.Context, quizID uuid.UUID, draft QuestionDraft) (*models.Question, error) {
	if titleTrim(draft.Text) == "" {
		return nil, &ValidationError{Field: "text", Message: "câu hỏi không được để trống"}
	}
	if titleTrim(draft.Answer) == "" {
		return nil, &ValidationError{Field: "answer", Message: "đáp án không được để trống"}
	}

	session, err := s.loadSession(ctx, quizID)
	if err != nil {
		return nil, err
	}

	var imageURL, answerImageURL string
	g, gctx := errgroup.WithContext(ctx)
	if draft.Image != nil {
		img := draft.Image
		g.Go(func() error {
			uctx, cancel := s.callCtx(gctx)
			defer cancel()
			url, err := s.media.Upload(uctx, img.Data, "question_images", img.ContentType)
			if err != nil {
				return fmt.Errorf("upload ảnh câu hỏi thất bại: %w", err)
			}
			imageURL = url
			return nil
		})
	}
	if draft.AnswerImage != nil {
		img := draft.AnswerImage
		g.Go(func() error {
			uctx, cancel := s.callCtx(gctx)
			defer cancel()
			url, err := s.media.Upload(uctx, img.Data, "answer_images", img.ContentType)
			if err != nil {
				return fmt.Errorf("upload ảnh đáp án thất bại: %w", err)
			}
			answerImageURL = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	question := models.Question{
		QuizID:         quizID,
		Text:           titleTrim(draft.Text),
		Answer:         titleTrim(draft.Answer),
		ImageURL:       imageURL,
		AnswerImageURL: answerImageURL,
	}

	s.mu.Lock()
	session.questions = append(session.questions, question)
	s.mu.Unlock()

	return &question, nil
}

// Questions trả danh sách câu hỏi đã soạn trong phiên (chưa commit)
func (s *AssemblyService) Questions(quizID uuid.UUID) []models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[quizID]
	if !ok {
		return nil
	}
	out := make([]models.Question, len(session.questions))
	copy(out, session.questions)
	return out
}

// Finish commit batch câu hỏi. Thất bại thì danh sách trong phiên giữ
// nguyên để retry, không phải nhập lại. Thành công thì phiên kết thúc.
func (s *AssemblyService) Finish(ctx context.Context, quizID uuid.UUID) error {
	session, err := s.loadSession(ctx, quizID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	questions := make([]models.Question, len(session.questions))
	copy(questions, session.questions)
	s.mu.Unlock()

	cctx, cancel := s.callCtx(ctx)
	defer cancel()
	if err := s.store.AddQuestions(cctx, quizID, questions); err != nil {
		return err
	}

	s.mu.Lock()
	session.state = StateComplete
	delete(s.sessions, quizID)
	s.mu.Unlock()

	return nil
}

// SessionState trả trạng thái phiên hiện tại (phục vụ API status)
func (s *AssemblyService) SessionState(quizID uuid.UUID) (SessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[quizID]
	if !ok {
		return "", false
	}
	return session.state, true
}

// Hydrate đọc metadata quiz rồi (chỉ sau khi metadata ok) đọc câu hỏi.
// Quiz chỉ "sẵn sàng" khi cả hai bước xong; câu hỏi lỗi thì không trả
// dữ liệu nửa vời.
func (s *AssemblyService) Hydrate(ctx context.Context, quizID uuid.UUID) (*models.Quiz, error) {
	qctx, qcancel := s.callCtx(ctx)
	quiz, err := s.store.GetQuiz(qctx, quizID)
	qcancel()
	if err != nil {
		return nil, err
	}

	cctx, cancel := s.callCtx(ctx)
	defer cancel()
	questions, err := s.store.GetQuestions(cctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("quiz chưa sẵn sàng, đọc câu hỏi thất bại: %w", err)
	}

	quiz.Questions = questions
	return quiz, nil
}

// HydrateAll hydrate nhiều quiz song song, không ràng buộc thứ tự giữa
// các quiz; trả kết quả khi TẤT CẢ xong, giữ nguyên thứ tự input. Quiz
// hydrate lỗi bị bỏ qua (log), không chặn cả danh sách.
func (s *AssemblyService) HydrateAll(ctx context.Context, ids []uuid.UUID) []models.Quiz {
	results := make([]*models.Quiz, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			quiz, err := s.Hydrate(ctx, id)
			if err != nil {
				log.Printf("hydrate quiz %s lỗi: %v", id, err)
				return nil
			}
			results[i] = quiz
			return nil
		})
	}
	g.Wait()

	out := make([]models.Quiz, 0, len(ids))
	for _, quiz := range results {
		if quiz != nil {
			out = append(out, *quiz)
		}
	}
	return out
}

// BrowsePublic trả danh sách quiz công khai, hydrate đầy đủ, sort theo title
func (s *AssemblyService) BrowsePublic(ctx context.Context) ([]models.Quiz, error) {
	cctx, cancel := s.callCtx(ctx)
	quizzes, err := s.store.GetPublicQuizzes(cctx)
	cancel()
	if err != nil {
		return nil, err
	}
	return s.hydrateAndSort(ctx, quizzes), nil
}

// BrowseUser trả danh sách quiz trong membership của user, hydrate đầy
// đủ, sort theo title
func (s *AssemblyService) BrowseUser(ctx context.Context, userID uuid.UUID) ([]models.Quiz, error) {
	cctx, cancel := s.callCtx(ctx)
	quizzes, err := s.store.GetUserQuizzes(cctx, userID)
	cancel()
	if err != nil {
		return nil, err
	}
	return s.hydrateAndSort(ctx, quizzes), nil
}

func (s *AssemblyService) hydrateAndSort(ctx context.Context, quizzes []models.Quiz) []models.Quiz {
	ids := make([]uuid.UUID, len(quizzes))
	for i, q := range quizzes {
		ids[i] = q.ID
	}
	hydrated := s.HydrateAll(ctx, ids)
	// Sort theo title áp dụng sau khi toàn bộ hydrate xong
	sort.Slice(hydrated, func(i, j int) bool {
		return hydrated[i].Title < hydrated[j].Title
	})
	return hydrated
}

// loadSession lấy phiên trong memory, hoặc dựng lại từ DB (trường hợp
// server restart giữa chừng workflow)
func (s *AssemblyService) loadSession(ctx context.Context, quizID uuid.UUID) (*quizSession, error) {
	s.mu.Lock()
	if session, ok := s.sessions[quizID]; ok {
		s.mu.Unlock()
		return session, nil
	}
	s.mu.Unlock()

	cctx, cancel := s.callCtx(ctx)
	defer cancel()
	quiz, err := s.store.GetQuiz(cctx, quizID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[quizID]; ok {
		return session, nil
	}
	session := &quizSession{state: StateShell, quiz: *quiz}
	s.sessions[quizID] = session
	return session, nil
}
