// Package mediawiki implements the Action/REST API collaborators: the
// edit-count lookup used by the peer-review merge and the edit submission.
package mediawiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ArticleHistoryBot/internal/ports"
)

// Client wraps one wiki's api.php and REST endpoints.
type Client struct {
	apiURL    string
	restURL   string
	userAgent string
	token     string
	client    *http.Client
}

var (
	_ ports.EditCounter = (*Client)(nil)
	_ ports.Persister   = (*Client)(nil)
)

// NewClient takes the api.php URL, the REST base ("/w/rest.php"), and an
// OAuth2 bearer token for edits.
func NewClient(apiURL, restURL, userAgent, token string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiURL:    apiURL,
		restURL:   strings.TrimSuffix(restURL, "/"),
		userAgent: userAgent,
		token:     token,
		client:    client,
	}
}

// EditCount queries the REST history endpoint for a page's edit count.
func (c *Client) EditCount(ctx context.Context, page string) (int, error) {
	normalized := strings.ReplaceAll(page, " ", "_")
	endpoint := fmt.Sprintf("%s/v1/page/%s/history/counts/edits", c.restURL, url.PathEscape(normalized))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request edit count: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("edit count for %q: %s", page, resp.Status)
	}

	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode edit count: %w", err)
	}
	return body.Count, nil
}

// Submit posts the transformed page as a minor bot edit. The base revision
// guard makes MediaWiki reject the edit if the page changed underneath us.
func (c *Client) Submit(ctx context.Context, title string, baseRev int64, text, summary string) error {
	csrf, err := c.csrfToken(ctx)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("action", "edit")
	form.Set("format", "json")
	form.Set("title", title)
	form.Set("text", text)
	form.Set("summary", summary)
	form.Set("baserevid", strconv.FormatInt(baseRev, 10))
	form.Set("minor", "1")
	form.Set("bot", "1")
	form.Set("token", csrf)

	var body struct {
		Edit struct {
			Result string `json:"result"`
		} `json:"edit"`
		Error *struct {
			Code string `json:"code"`
			Info string `json:"info"`
		} `json:"error"`
	}
	if err := c.post(ctx, form, &body); err != nil {
		return err
	}
	if body.Error != nil {
		return fmt.Errorf("edit %q: %s (%s)", title, body.Error.Info, body.Error.Code)
	}
	if body.Edit.Result != "Success" {
		return fmt.Errorf("edit %q: result %q", title, body.Edit.Result)
	}
	return nil
}

func (c *Client) csrfToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("action", "query")
	form.Set("meta", "tokens")
	form.Set("type", "csrf")
	form.Set("format", "json")

	var body struct {
		Query struct {
			Tokens struct {
				CSRF string `json:"csrftoken"`
			} `json:"tokens"`
		} `json:"query"`
	}
	if err := c.post(ctx, form, &body); err != nil {
		return "", err
	}
	if body.Query.Tokens.CSRF == "" {
		return "", fmt.Errorf("empty csrf token")
	}
	return body.Query.Tokens.CSRF, nil
}

func (c *Client) post(ctx context.Context, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
