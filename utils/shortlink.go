package utils

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ShortenLink gọi TinyURL để rút gọn link chia sẻ quiz.
// Best-effort: caller nên fallback về link dài khi lỗi.
func ShortenLink(longURL string) (string, error) {
	api := fmt.Sprintf("https://tinyurl.com/api-create.php?url=%s", url.QueryEscape(longURL))

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(api)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("rút gọn link thất bại: status=%d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	short := strings.TrimSpace(string(body))
	if short == "" {
		return "", fmt.Errorf("TinyURL trả về rỗng")
	}
	return short, nil
}
