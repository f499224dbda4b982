package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// maxResponseSize caps how much of a product page is read, protecting
// against pathological responses.
const maxResponseSize = 10 * 1024 * 1024

// Config holds the per-run scraping parameters. The orchestrator builds a
// fresh Fetcher from each run's config snapshot.
type Config struct {
	UserAgents []string
	Delay      time.Duration
	Timeout    time.Duration
	Retry      RetryPolicy
}

// Fetcher retrieves product pages and extracts prices through the strategy
// registry. It performs no storage writes.
type Fetcher struct {
	client   *http.Client
	registry *Registry
	cfg      Config
	logger   *zap.Logger
	rotation atomic.Uint64
}

// New builds a Fetcher. Zero-value config fields fall back to sane defaults;
// the user agent pool must be non-empty (config guarantees a default pool).
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	return &Fetcher{
		client:   &http.Client{Timeout: cfg.Timeout},
		registry: NewRegistry(),
		cfg:      cfg,
		logger:   logger,
	}
}

// Fetch retrieves the current price for a product URL. Fails with
// ErrNetwork (retried once with backoff), ErrParse or ErrBlocked.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (float64, error) {
	detail, err := f.FetchDetail(ctx, rawURL)
	return detail.Price, err
}

// FetchDetail is Fetch plus the product title when the page exposes one.
func (f *Fetcher) FetchDetail(ctx context.Context, rawURL string) (Detail, error) {
	strategy := f.registry.ForURL(rawURL)

	var detail Detail
	err := f.cfg.Retry.Do(ctx, func() error {
		if err := sleepCtx(ctx, f.cfg.Delay); err != nil {
			return err
		}
		doc, err := f.get(ctx, rawURL)
		if err != nil {
			return err
		}
		extracted, err := strategy.Extract(doc)
		if err != nil {
			return err
		}
		detail = extracted
		return nil
	})
	if err != nil {
		return Detail{}, err
	}

	f.logger.Debug("price extracted",
		zap.String("url", rawURL),
		zap.String("strategy", strategy.Name),
		zap.Float64("price", detail.Price))
	return detail, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", f.nextUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", ErrBlocked, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if blockedDocument(doc) {
		return nil, fmt.Errorf("%w: challenge page detected", ErrBlocked)
	}
	return doc, nil
}

// nextUserAgent rotates through the configured pool to avoid a single
// static fingerprint.
func (f *Fetcher) nextUserAgent() string {
	if len(f.cfg.UserAgents) == 0 {
		return "Mozilla/5.0 (compatible; pricetracker/1.0)"
	}
	n := f.rotation.Add(1)
	return f.cfg.UserAgents[(n-1)%uint64(len(f.cfg.UserAgents))]
}

// challengeMarkers are phrases bot-mitigation interstitials tend to carry.
var challengeMarkers = []string{
	"captcha",
	"robot check",
	"are you a human",
	"access denied",
	"unusual traffic",
}

func blockedDocument(doc *goquery.Document) bool {
	title := strings.ToLower(doc.Find("title").First().Text())
	for _, marker := range challengeMarkers {
		if strings.Contains(title, marker) {
			return true
		}
	}
	return false
}
