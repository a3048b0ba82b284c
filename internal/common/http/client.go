// internal/common/http/client.go
package http

import (
	"net/http"
	"time"
)

// Client is the shared HTTP client for outbound provider API calls. One
// instance serves all adapters so vendor connections are pooled together.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Do executes the request. Callers bind cancellation by building the request
// with http.NewRequestWithContext.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// CloseIdleConnections drops pooled connections, for shutdown.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}
