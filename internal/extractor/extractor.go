// Package extractor fetches a document reference over HTTP and reduces it
// to clean, whitespace-normalized plain text.
package extractor

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mugeshbabu/docchat/internal/domain"
	"github.com/mugeshbabu/docchat/internal/metrics"
)

// maxBodySize caps the fetched document body at 10MB.
const maxBodySize = 10 << 20

// Extractor fetches and strips remote documents.
type Extractor struct {
	client        *http.Client
	fetchTimeout  time.Duration
	slowThreshold time.Duration
	logger        *zap.Logger
}

// New creates an Extractor. The fetch timeout bounds the whole request;
// fetches slower than half the timeout complete normally but are logged
// as degraded.
func New(client *http.Client, fetchTimeout time.Duration, logger *zap.Logger) *Extractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Extractor{
		client:        client,
		fetchTimeout:  fetchTimeout,
		slowThreshold: fetchTimeout / 2,
		logger:        logger,
	}
}

// Extract fetches the reference and returns its plain text. Network or
// status failures wrap domain.ErrFetchFailed; an extraction that yields no
// text returns domain.ErrEmptyContent.
func (e *Extractor) Extract(ctx context.Context, reference string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	start := time.Now()

	raw, err := e.fetch(ctx, reference)

	duration := time.Since(start)
	metrics.DocumentFetchDuration.Observe(duration.Seconds())

	if err != nil {
		metrics.DocumentFetchTotal.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.DocumentFetchTotal.WithLabelValues("success").Inc()

	if duration > e.slowThreshold {
		e.logger.Warn("slow document fetch",
			zap.String("reference", reference),
			zap.Duration("duration", duration),
			zap.Duration("timeout", e.fetchTimeout),
		)
	}

	text := stripHTML(raw)
	if text == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrEmptyContent, reference)
	}
	return text, nil
}

func (e *Extractor) fetch(ctx context.Context, reference string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reference, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", domain.ErrFetchFailed, err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: unexpected status %d for %s",
			domain.ErrFetchFailed, resp.StatusCode, reference)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", domain.ErrFetchFailed, err)
	}
	return string(body), nil
}

// Pre-compiled regular expressions for HTML stripping.
var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag   = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag        = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements = regexp.MustCompile(`(?i)</?(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
)

// stripHTML removes non-content markup and normalizes whitespace: each line
// is trimmed, blank lines are dropped, and the remainder is newline-joined.
func stripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	// Block boundaries become line breaks so adjacent elements don't merge
	content = blockElements.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	var result []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
