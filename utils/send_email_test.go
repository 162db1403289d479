package utils

import (
	"strings"
	"testing"
)

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage(
		"noreply@clevercards.app",
		"hocvien@test.vn",
		"Chào mừng bạn đến với CleverCards",
		"<p>Xin chào</p>",
	))

	t.Run("header UTF-8 và HTML", func(t *testing.T) {
		for _, want := range []string{
			"MIME-Version: 1.0\r\n",
			"Content-Type: text/html; charset=\"UTF-8\"\r\n",
			"From: noreply@clevercards.app\r\n",
			"To: hocvien@test.vn\r\n",
			"Subject: Chào mừng bạn đến với CleverCards\r\n",
		} {
			if !strings.Contains(msg, want) {
				t.Errorf("message thiếu header %q", want)
			}
		}
	})

	t.Run("body nằm sau dòng trống", func(t *testing.T) {
		headers, body, ok := strings.Cut(msg, "\r\n\r\n")
		if !ok {
			t.Fatal("message không có dòng trống ngăn header/body")
		}
		if strings.Contains(headers, "<p>") {
			t.Error("body lẫn vào phần header")
		}
		if body != "<p>Xin chào</p>" {
			t.Errorf("body = %q", body)
		}
	})
}
