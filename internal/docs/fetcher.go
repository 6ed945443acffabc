package docs

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"vela-dashboard-backend/internal/shared/metrics"
	"vela-dashboard-backend/internal/shared/telemetry"
)

// maxContentLen bounds snippet content so prompts stay a reasonable size.
const maxContentLen = 2000

// maxBodyBytes caps how much of a documentation page is read before
// stripping; pages past this point add nothing to a 2000-char snippet.
const maxBodyBytes = 1 << 20

// Snippet is a relevance-filtered excerpt of one documentation page.
type Snippet struct {
	URL     string
	Content string
}

// Fetcher retrieves reference documentation for a query from a fixed set of
// URLs. Per-URL failures are absorbed; partial coverage is acceptable.
type Fetcher struct {
	urls       []string
	httpClient *http.Client
}

// NewFetcher constructs a Fetcher over the configured documentation URLs.
func NewFetcher(urls []string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		urls: urls,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

var (
	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// Fetch returns snippets relevant to the query, in configured URL order.
// It never returns an error: sources that fail to fetch or do not match
// the query are skipped.
func (f *Fetcher) Fetch(ctx context.Context, query string) []Snippet {
	var relevant []Snippet
	for _, url := range f.urls {
		text, ok := f.fetchOne(ctx, url)
		if !ok {
			continue
		}
		if !matchesQuery(text, query) {
			continue
		}
		metrics.IncDocsFetched()
		relevant = append(relevant, Snippet{
			URL:     url,
			Content: truncate(text, maxContentLen),
		})
	}
	return relevant
}

// URLs returns the order in which snippet URLs can appear in results.
func (f *Fetcher) URLs() []string {
	return append([]string(nil), f.urls...)
}

func (f *Fetcher) fetchOne(ctx context.Context, url string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.logFetchFailure(url, err.Error())
		return "", false
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logFetchFailure(url, err.Error())
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logFetchFailure(url, resp.Status)
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		f.logFetchFailure(url, err.Error())
		return "", false
	}

	return stripMarkup(string(body)), true
}

func (f *Fetcher) logFetchFailure(url, reason string) {
	metrics.IncDocsFetchFailed()
	telemetry.Info("docs.fetch_skipped", map[string]any{
		"url":    url,
		"reason": reason,
	})
}

// stripMarkup removes script and style blocks, strips remaining tags, and
// collapses whitespace.
func stripMarkup(html string) string {
	text := scriptRe.ReplaceAllString(html, "")
	text = styleRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// matchesQuery implements the permissive OR-filter: a source is included if
// it contains the whole query or any single token of it, case-insensitively.
// Recall is favored over precision here.
func matchesQuery(text, query string) bool {
	loweredText := strings.ToLower(text)
	loweredQuery := strings.ToLower(strings.TrimSpace(query))
	if loweredQuery == "" {
		return false
	}
	if strings.Contains(loweredText, loweredQuery) {
		return true
	}
	for _, token := range strings.Fields(loweredQuery) {
		if strings.Contains(loweredText, token) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
