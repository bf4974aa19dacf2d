package validate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	nurl "net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/aiscout/backend/app/content"
)

// browserUserAgent is sent on validation requests; a number of publishers
// reject obviously non-browser agents outright.
const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const maxPageBytes = 512 * 1024

var youtubeIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]+)`)

var podcastPlatforms = []string{
	"spotify.com",
	"apple.com/podcasts",
	"podcasts.apple.com",
	"anchor.fm",
	"soundcloud.com",
}

// Result captures the outcome of validating one URL.
type Result struct {
	URL                 string
	Valid               bool
	StatusCode          int
	ContentTypeDetected string
	Err                 string
}

// Validator checks content URLs for reachability and plausibility. Batches run
// on a bounded worker pool under an overall deadline; items not validated by
// the deadline are dropped, never retried.
type Validator struct {
	httpClient   *http.Client
	feedParser   *gofeed.Parser
	workerCount  int
	batchTimeout time.Duration
}

func NewValidator(perURLTimeout time.Duration, workerCount int) *Validator {
	return &Validator{
		httpClient: &http.Client{
			Timeout: perURLTimeout,
		},
		feedParser:   gofeed.NewParser(),
		workerCount:  workerCount,
		batchTimeout: 30 * time.Second,
	}
}

// Run validates a batch of raw items concurrently and returns the subset whose
// URLs passed, each annotated with a validation record. Input order is
// preserved. Items without a URL are dropped.
func (v *Validator) Run(ctx context.Context, items []map[string]any) []map[string]any {
	if len(items) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, v.batchTimeout)
	defer cancel()

	type indexed struct {
		index int
		item  map[string]any
	}

	jobs := make(chan indexed)
	kept := make([]map[string]any, len(items))

	workers := v.workerCount
	if workers > len(items) {
		workers = len(items)
	}

	go func() {
		defer close(jobs)
		for i, item := range items {
			select {
			case jobs <- indexed{i, item}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if validated := v.validateItem(ctx, job.item); validated != nil {
					kept[job.index] = validated
				}
			}
		}()
	}
	wg.Wait()

	valid := make([]map[string]any, 0, len(items))
	for _, item := range kept {
		if item != nil {
			valid = append(valid, item)
		}
	}

	slog.Debug("Content validation finished", "passed", len(valid), "total", len(items))
	return valid
}

func (v *Validator) validateItem(ctx context.Context, item map[string]any) map[string]any {
	url, _ := item["url"].(string)
	contentType, _ := item["type"].(string)
	if url == "" {
		return nil
	}

	result := v.ValidateURL(ctx, url, contentType)
	if !result.Valid {
		title, _ := item["title"].(string)
		slog.Debug("Invalid content filtered", "title", title, "url", url, "error", result.Err)
		return nil
	}

	item["validation"] = &content.Validation{
		ValidatedAt:         time.Now().UTC().Format(time.RFC3339),
		StatusCode:          result.StatusCode,
		ContentTypeVerified: result.ContentTypeDetected,
	}
	return item
}

// ValidateURL validates a single URL, dispatching on the declared content type.
func (v *Validator) ValidateURL(ctx context.Context, url, contentType string) Result {
	result := Result{URL: url}

	parsed, err := nurl.Parse(url)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		result.Err = "invalid URL format"
		return result
	}

	host := strings.ToLower(parsed.Host)
	switch {
	case contentType == "video" && (strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be")):
		return v.validateYouTube(ctx, url, result)
	case contentType == "podcast":
		return v.validatePodcast(ctx, url, result)
	default:
		return v.validateGeneral(ctx, url, result)
	}
}

func (v *Validator) validateYouTube(ctx context.Context, url string, result Result) Result {
	if !youtubeIDPattern.MatchString(url) {
		result.Err = "could not extract YouTube video ID"
		return result
	}

	resp, err := v.head(ctx, url)
	if err != nil {
		result.Err = fmt.Sprintf("YouTube video validation failed: %v", err)
		return result
	}
	resp.Body.Close()
	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode == http.StatusOK:
		result.Valid = true
		result.ContentTypeDetected = "video"
		v.verifyYouTubeTitle(ctx, url, &result)
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		result.Err = "YouTube video not found or removed"
	default:
		result.Err = fmt.Sprintf("YouTube video inaccessible (status: %d)", resp.StatusCode)
	}

	return result
}

// verifyYouTubeTitle checks the page title does not look like a bare "video
// unavailable" shell. Best effort: failures leave the result untouched.
func (v *Validator) verifyYouTubeTitle(ctx context.Context, url string, result *Result) {
	resp, err := v.get(ctx, url)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" || title == "YouTube" {
		result.Valid = false
		result.Err = "YouTube page has no video title"
	}
}

func (v *Validator) validatePodcast(ctx context.Context, url string, result Result) Result {
	resp, err := v.head(ctx, url)
	if err != nil {
		result.Err = fmt.Sprintf("podcast validation failed: %v", err)
		return result
	}
	resp.Body.Close()
	result.StatusCode = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		result.Err = fmt.Sprintf("podcast not accessible (status: %d)", resp.StatusCode)
		return result
	}

	mimeType := strings.ToLower(resp.Header.Get("Content-Type"))
	lowerURL := strings.ToLower(url)

	for _, platform := range podcastPlatforms {
		if strings.Contains(lowerURL, platform) {
			result.Valid = true
			result.ContentTypeDetected = "podcast"
			return result
		}
	}

	if strings.Contains(mimeType, "audio/") {
		result.Valid = true
		result.ContentTypeDetected = "podcast"
		return result
	}

	// Many podcast links point at the show's RSS feed rather than a page.
	if strings.Contains(mimeType, "xml") || strings.Contains(mimeType, "rss") {
		if v.isAudioFeed(ctx, url) {
			result.Valid = true
			result.ContentTypeDetected = "podcast"
			return result
		}
	}

	result.Err = "URL does not appear to be a valid podcast"
	return result
}

func (v *Validator) isAudioFeed(ctx context.Context, url string) bool {
	resp, err := v.get(ctx, url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	feed, err := v.feedParser.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return false
	}

	for _, item := range feed.Items {
		for _, enclosure := range item.Enclosures {
			if enclosure != nil && strings.HasPrefix(enclosure.Type, "audio/") {
				return true
			}
		}
	}
	return false
}

func (v *Validator) validateGeneral(ctx context.Context, url string, result Result) Result {
	resp, err := v.head(ctx, url)
	if err != nil {
		// Some servers reject HEAD; fall back to GET.
		resp, err = v.get(ctx, url)
		if err != nil {
			result.Err = fmt.Sprintf("URL validation failed: %v", err)
			return result
		}
	}
	resp.Body.Close()

	result.StatusCode = resp.StatusCode
	// 403 is accepted: bot-blocking sites commonly serve it for content a
	// browser can reach.
	result.Valid = resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusForbidden
	if !result.Valid {
		result.Err = fmt.Sprintf("URL returned status %d", resp.StatusCode)
	}

	return result
}

func (v *Validator) head(ctx context.Context, url string) (*http.Response, error) {
	return v.do(ctx, http.MethodHead, url)
}

func (v *Validator) get(ctx context.Context, url string) (*http.Response, error) {
	return v.do(ctx, http.MethodGet, url)
}

func (v *Validator) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	return v.httpClient.Do(req)
}
