package links

import (
	"context"
	"log/slog"
	nurl "net/url"
	"sync"
)

const defaultMaxWorkers = 10

// Lookup asks the search backend for citation URLs backing a given title.
type Lookup interface {
	LookupCitations(ctx context.Context, apiKey, title, source string) ([]string, error)
}

// Resolver finds candidate URLs for result items whose titles came back
// without links, fanning lookups out over a bounded worker pool. Lookups never
// fail the batch: an item that cannot be resolved gets a web-search fallback
// URL instead.
type Resolver struct {
	lookup     Lookup
	maxWorkers int
}

func NewResolver(lookup Lookup, maxWorkers int) *Resolver {
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	return &Resolver{lookup: lookup, maxWorkers: maxWorkers}
}

// Run resolves candidate URLs for every item concurrently and returns them
// keyed by title. Every input title gets an entry with at least one candidate.
func (r *Resolver) Run(ctx context.Context, apiKey string, items []map[string]any) map[string][]string {
	resolved := make(map[string][]string, len(items))
	if len(items) == 0 {
		return resolved
	}

	workers := r.maxWorkers
	if workers > len(items) {
		workers = len(items)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for _, item := range items {
		title, _ := item["title"].(string)
		if title == "" {
			continue
		}
		source, _ := item["source"].(string)

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			urls := r.resolveOne(ctx, apiKey, title, source)
			mu.Lock()
			resolved[title] = urls
			mu.Unlock()
		}()
	}

	wg.Wait()

	slog.Debug("Link resolution finished", "items", len(items), "resolved", len(resolved))
	return resolved
}

func (r *Resolver) resolveOne(ctx context.Context, apiKey, title, source string) []string {
	urls, err := r.lookup.LookupCitations(ctx, apiKey, title, source)
	if err != nil {
		slog.Debug("Citation lookup failed", "title", title, "error", err)
	}
	if len(urls) == 0 {
		return []string{FallbackURL(title, source)}
	}
	return urls
}

// FallbackURL builds a web search URL for a title so the client always has
// somewhere to send the user.
func FallbackURL(title, source string) string {
	query := title
	if source != "" {
		query += " " + source
	}
	values := nurl.Values{"q": []string{query}}
	return "https://www.google.com/search?" + values.Encode()
}
