package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"holamundo/internal/domain"
)

const (
	DefaultTimeout   = 20 * time.Second
	DefaultUserAgent = "holamundo/1.0 (+study companion)"
	maxBodyBytes     = 8 << 20
)

// skipped subtrees never contribute article text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Nav:      true,
	atom.Footer:   true,
	atom.Header:   true,
	atom.Noscript: true,
	atom.Template: true,
}

// Fetcher returns plain text for a URL or passes pasted text through.
type Fetcher struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

type Config struct {
	Timeout   time.Duration
	UserAgent string
}

func NewFetcher(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// IsURL reports whether input should be fetched rather than used as text.
func IsURL(input string) bool {
	s := strings.ToLower(strings.TrimSpace(input))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (f *Fetcher) Fetch(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", domain.ErrEmptyInput
	}
	if !IsURL(input) {
		return input, nil
	}
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: GET %s: %s", domain.ErrSourceUnavailable, input, resp.Status)
	}
	text, err := ExtractText(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	f.logger.Info("source fetched",
		zap.String("url", input),
		zap.Int("chars", len(text)),
		zap.Duration("elapsed", time.Since(start)))
	if text == "" {
		return "", fmt.Errorf("%w: no text found at %s", domain.ErrSourceUnavailable, input)
	}
	return text, nil
}

// ExtractText returns the visible text of an HTML document with whitespace
// collapsed to single spaces.
func ExtractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipped[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " "), nil
}

var _ domain.TextSource = (*Fetcher)(nil)
