package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("roundtrip", func(t *testing.T) {
		token, err := GenerateToken("user-123")
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}

		claims, err := VerifyToken(token)
		if err != nil {
			t.Fatalf("VerifyToken: %v", err)
		}
		if claims.UserID != "user-123" {
			t.Errorf("UserID = %q, muốn user-123", claims.UserID)
		}
		if claims.Issuer != "clevercards" {
			t.Errorf("Issuer = %q", claims.Issuer)
		}
	})

	t.Run("sai secret", func(t *testing.T) {
		token, err := GenerateToken("user-123")
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}

		t.Setenv("JWT_SECRET", "secret-khac")
		if _, err := VerifyToken(token); err == nil {
			t.Fatal("muốn lỗi khi verify bằng secret khác")
		}
	})

	t.Run("token hết hạn", func(t *testing.T) {
		claims := Claims{
			UserID: "user-123",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				Issuer:    "clevercards",
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("ký token: %v", err)
		}

		if _, err := VerifyToken(token); err == nil {
			t.Fatal("muốn lỗi khi token hết hạn")
		}
	})

	t.Run("chuỗi rác", func(t *testing.T) {
		if _, err := VerifyToken("not-a-jwt"); err == nil {
			t.Fatal("muốn lỗi khi token không parse được")
		}
	})
}
