package services

import (
	"context"

	"github.com/vnkhanh/clevercards-backend/utils"
)

// SupabaseMedia là MediaGateway chạy trên Supabase Storage + Gemini + TinyURL
type SupabaseMedia struct{}

func NewSupabaseMedia() *SupabaseMedia {
	return &SupabaseMedia{}
}

func (m *SupabaseMedia) Upload(ctx context.Context, data []byte, folder, contentType string) (string, error) {
	return utils.UploadBytesToSupabase(data, folder, contentType)
}

func (m *SupabaseMedia) Delete(ctx context.Context, publicURL string) error {
	return utils.DeleteFileFromSupabase(publicURL)
}

func (m *SupabaseMedia) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return GeminiGenerateImage(ctx, prompt)
}

func (m *SupabaseMedia) ShortenLink(ctx context.Context, longURL string) (string, error) {
	return utils.ShortenLink(longURL)
}
