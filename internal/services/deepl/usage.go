package deepl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ctxmenu/internal/services"
)

// Usage is the account's character consumption for the current period.
type Usage struct {
	CharacterCount int64 `json:"character_count"`
	CharacterLimit int64 `json:"character_limit"`
}

// UsageURL derives the usage endpoint from a translate endpoint.
func UsageURL(baseURL string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if strings.HasSuffix(trimmed, "/translate") {
		return strings.TrimSuffix(trimmed, "/translate") + "/usage"
	}
	return trimmed + "/usage"
}

// Usage fetches character usage once, without retries. It doubles as a
// reachability and key check.
func (c *Client) Usage(ctx context.Context) (Usage, error) {
	var usage Usage
	if c.cfg.APIKey == "" {
		return usage, services.Wrap(services.ErrConfiguration, "deepl", "usage", "api key required (translate.api_key or DEEPL_AUTH_KEY)", nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, UsageURL(c.cfg.BaseURL), nil)
	if err != nil {
		return usage, fmt.Errorf("deepl usage: new request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.cfg.APIKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return usage, classify(fmt.Errorf("deepl usage: http error: %w", err))
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return usage, fmt.Errorf("deepl usage: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return usage, classify(&httpStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))})
	}
	if err := json.Unmarshal(body, &usage); err != nil {
		return usage, fmt.Errorf("deepl usage: decode response: %w", err)
	}
	return usage, nil
}
