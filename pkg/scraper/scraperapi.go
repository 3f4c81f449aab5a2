package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sefazor/reelmint-backend/pkg/apperror"
	"go.uber.org/zap"
)

const defaultBaseURL = "http://api.scraperapi.com"

// PageResult holds the raw fetch outcome. A non-200 upstream status still
// carries whatever body was returned; callers decide what to do with it.
type PageResult struct {
	URL     string
	Status  int
	Content string
}

// Client fetches product pages through ScraperAPI with JS rendering enabled.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With(zap.String("component", "scraperapi")),
	}
}

func (c *Client) FetchPage(ctx context.Context, target string) (*PageResult, error) {
	if _, err := url.ParseRequestURI(target); err != nil {
		return nil, apperror.Validation("invalid URL format")
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("url", target)
	q.Set("render", "true")
	reqURL := fmt.Sprintf("%s?%s", c.baseURL, q.Encode())

	c.logger.Info("fetching page", zap.String("url", target))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperror.Internal("failed to build scrape request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			c.logger.Error("scrape timed out", zap.String("url", target))
			return nil, apperror.Wrap(504, apperror.CodeScrapeTimeout, "scrape request timed out", err)
		}
		return nil, apperror.Upstream(apperror.CodeScrapeError, "failed to fetch page", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Upstream(apperror.CodeScrapeError, "failed to read page body", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("non-200 scrape status, keeping body",
			zap.Int("status", resp.StatusCode),
			zap.Int("length", len(body)))
	} else {
		c.logger.Info("page fetched",
			zap.Int("status", resp.StatusCode),
			zap.Int("length", len(body)))
	}

	return &PageResult{
		URL:     target,
		Status:  resp.StatusCode,
		Content: string(body),
	}, nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
