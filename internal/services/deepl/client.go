package deepl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ctxmenu/internal/services"
)

const (
	// DefaultBaseURL targets the free API tier.
	DefaultBaseURL = "https://api-free.deepl.com/v2/translate"

	defaultHTTPTimeout    = 30 * time.Second
	defaultRetryMaxDelay  = 8 * time.Second
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRetryAttempts  = 3

	// statusQuotaExceeded is DeepL's non-standard "quota exceeded" code.
	statusQuotaExceeded = 456
)

// Config captures the runtime settings required to talk to DeepL.
type Config struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Client wraps the DeepL translate API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a DeepL client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = DefaultBaseURL
	}
	return client
}

// Translation is a single translated text plus the language DeepL detected.
type Translation struct {
	Text                   string `json:"text"`
	DetectedSourceLanguage string `json:"detected_source_language"`
}

type translateRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
}

type translateResponse struct {
	Translations []Translation `json:"translations"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("deepl request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Translate translates text into target (a DeepL language code such as EN-GB).
func (c *Client) Translate(ctx context.Context, text, target string) (Translation, error) {
	var empty Translation
	if strings.TrimSpace(text) == "" {
		return empty, services.Wrap(services.ErrValidation, "deepl", "translate", "text required", nil)
	}
	target = strings.ToUpper(strings.TrimSpace(target))
	if target == "" {
		return empty, services.Wrap(services.ErrValidation, "deepl", "translate", "target language required", nil)
	}
	if c.cfg.APIKey == "" {
		return empty, services.Wrap(services.ErrConfiguration, "deepl", "translate", "api key required (translate.api_key or DEEPL_AUTH_KEY)", nil)
	}

	payload := translateRequest{Text: []string{text}, TargetLang: target}
	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.sendOnce(ctx, payload)
		if err == nil {
			if len(resp.Translations) == 0 {
				return empty, services.Wrap(services.ErrExternalTool, "deepl", "translate", "response contained no translations", nil)
			}
			return resp.Translations[0], nil
		}

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return empty, classify(err)
		}
		if err := c.sleep(ctx, delay); err != nil {
			return empty, classify(err)
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return empty, services.Wrap(services.ErrTransient, "deepl", "translate", fmt.Sprintf("failed after %d attempts", attempts), lastErr)
}

func classify(err error) error {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusForbidden, http.StatusUnauthorized:
			return services.Wrap(services.ErrConfiguration, "deepl", "translate", "authentication rejected", err)
		case statusQuotaExceeded:
			return services.Wrap(services.ErrConfiguration, "deepl", "translate", "character quota exceeded", err)
		case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
			return services.Wrap(services.ErrValidation, "deepl", "translate", "request rejected", err)
		}
		return services.Wrap(services.ErrTransient, "deepl", "translate", "", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "deepl", "translate", "", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.Wrap(services.ErrTimeout, "deepl", "translate", "", err)
	}
	return services.Wrap(services.ErrTransient, "deepl", "translate", "", err)
}

func (c *Client) sendOnce(ctx context.Context, payload translateRequest) (translateResponse, error) {
	var decoded translateResponse
	encoded, err := json.Marshal(payload)
	if err != nil {
		return decoded, fmt.Errorf("deepl request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return decoded, fmt.Errorf("deepl request: new request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decoded, fmt.Errorf("deepl request: http error (timeout=%s): %w", c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decoded, fmt.Errorf("deepl request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return decoded, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return decoded, fmt.Errorf("deepl request: decode response: %w", err)
	}
	return decoded, nil
}

func (c *Client) retryAttempts() int {
	if c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return c.capDelay(statusErr.RetryAfter), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

// backoffDelay doubles from the base delay per attempt, capped at the max.
func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	if base <= 0 {
		return 0
	}
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > c.retryMaxDelay/2 {
			delay = c.retryMaxDelay
			break
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if c.retryMaxDelay > 0 && delay > c.retryMaxDelay {
		return c.retryMaxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
