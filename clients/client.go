package clients

import (
	"fmt"
	"net/http"
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// TokenSource provides the current access token, empty when anonymous.
// Implemented by auth.State: the client layer never reads the session store
// itself.
type TokenSource interface {
	Token() string
}

// Client decorates an HTTPClient with bearer authentication. Requests go out
// without an Authorization header when no token is held, the API serves the
// public tier in that case.
type Client struct {
	client HTTPClient
	tokens TokenSource
}

func NewClient(c HTTPClient, tokens TokenSource) *Client {
	return &Client{
		client: c,
		tokens: tokens,
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Authorization") == "" {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		}
	}

	return c.client.Do(req)
}
