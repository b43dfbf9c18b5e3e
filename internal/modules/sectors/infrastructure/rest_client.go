package infrastructure

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "http://localhost:3000"

// RESTClient resolves backend paths against the base URL and carries the service token.
type RESTClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewRESTClient(baseURL, token string, timeout time.Duration, client *http.Client) *RESTClient {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	trimmed = strings.TrimRight(trimmed, "/")
	// A supplied client may be shared, so the timeout goes on a copy.
	if client == nil {
		client = &http.Client{Timeout: timeoutOrDefault(timeout)}
	} else if timeout > 0 && client.Timeout != timeout {
		copied := *client
		copied.Timeout = timeout
		client = &copied
	}
	return &RESTClient{baseURL: trimmed, token: strings.TrimSpace(token), client: client}
}

// NewRequest resolves endpoint against the base URL and attaches the JSON accept
// header plus the service bearer token when one is configured.
func (c *RESTClient) NewRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *RESTClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

func timeoutOrDefault(value time.Duration) time.Duration {
	if value <= 0 {
		return 10 * time.Second
	}
	return value
}
