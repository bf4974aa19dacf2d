package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	nurl "net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const maxArticleBytes = 2 * 1024 * 1024

// maxContextRunes bounds how much extracted article text is folded into the
// session seed. Long articles get truncated, not rejected.
const maxContextRunes = 4000

// ArticleExtractor fetches an article page and extracts its readable body
// text, used to ground chat sessions in what the article actually says.
type ArticleExtractor struct {
	httpClient *http.Client
	userAgent  string
}

func NewArticleExtractor(userAgent string) *ArticleExtractor {
	return &ArticleExtractor{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		userAgent:  userAgent,
	}
}

// Run fetches url and returns its extracted text content. Failures are
// ordinary: callers seed the session without article text.
func (e *ArticleExtractor) Run(ctx context.Context, url string) (string, error) {
	parsed, err := nurl.Parse(url)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid article URL: %q", url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("article fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArticleBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read article body: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), parsed)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no content extracted from article")
	}

	if runes := []rune(text); len(runes) > maxContextRunes {
		text = string(runes[:maxContextRunes])
	}

	slog.Debug("Article content extracted", "url", url, "title", article.Title, "content_length", len(text))

	return text, nil
}
