package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	blog "github.com/DaihanaA/avanzatech-blog"
	"github.com/DaihanaA/avanzatech-blog/clients/internal"
	"github.com/DaihanaA/avanzatech-blog/errors"
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the identity endpoints: token issue and refresh, current
// user, registration. It implements auth.IdentityClient. Tokens are passed
// explicitly, this client does not hold session state.
type Client struct {
	baseURL string
	client  HTTPClient
}

func NewClient(c HTTPClient, baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  c,
	}
}

func (c *Client) Login(ctx context.Context, credentials blog.Credentials) (blog.TokenPair, error) {
	body, err := internal.EncodeBody(credentials)
	if err != nil {
		return blog.TokenPair{}, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/token/", c.baseURL), body)
	if err != nil {
		return blog.TokenPair{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return blog.TokenPair{}, err
	}

	var pair blog.TokenPair
	if err := internal.Decode(res, &pair); err != nil {
		return blog.TokenPair{}, translate(err)
	}
	return pair, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	body, err := internal.EncodeBody(map[string]string{"refresh": refreshToken})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/token/refresh/", c.baseURL), body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", err
	}

	var token struct {
		Access string `json:"access"`
	}
	if err := internal.Decode(res, &token); err != nil {
		return "", err
	}
	return token.Access, nil
}

func (c *Client) CurrentUser(ctx context.Context, accessToken string) (blog.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/api/current-user/", c.baseURL), nil)
	if err != nil {
		return blog.Identity{}, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	res, err := c.client.Do(req)
	if err != nil {
		return blog.Identity{}, err
	}

	var identity blog.Identity
	if err := internal.Decode(res, &identity); err != nil {
		return blog.Identity{}, err
	}
	return identity, nil
}

func (c *Client) Register(ctx context.Context, registration blog.Registration) error {
	body, err := internal.EncodeBody(registration)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/register/", c.baseURL), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	return translate(internal.Decode(res, nil))
}

// knownMessages maps server messages to the text shown to the user. Matching
// is by substring since field errors arrive prefixed with the field name.
// Unknown messages pass through verbatim.
var knownMessages = map[string]string{
	"a user with that username already exists":           "username already exists, pick another one",
	"no active account found with the given credentials": "incorrect username or password",
	"authentication credentials were not provided":       "you need to sign in first",
	"given token not valid for any token type":           "your session expired, sign in again",
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	cErr, ok := err.(errors.Error)
	if !ok {
		return err
	}

	lower := strings.ToLower(cErr.Message())
	for known, friendly := range knownMessages {
		if strings.Contains(lower, known) {
			return errors.New(friendly, errors.WithCode(cErr.Code()))
		}
	}
	return err
}
