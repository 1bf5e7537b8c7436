package post

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	blog "github.com/DaihanaA/avanzatech-blog"
	"github.com/DaihanaA/avanzatech-blog/clients/internal"
	"github.com/DaihanaA/avanzatech-blog/permission"
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client covers the post, comment and like endpoints. Wrap the HTTPClient
// with clients.NewClient so requests carry the session's bearer token.
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

// CreateRequest is the payload of the post creation endpoint. The author
// permission is fixed by the API contract and filled in by Create.
type CreateRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category int    `json:"category"`

	PublicPermission        permission.Level `json:"public_permission"`
	AuthenticatedPermission permission.Level `json:"authenticated_permission"`
	TeamPermission          permission.Level `json:"team_permission"`
	AuthorPermission        permission.Level `json:"author_permission"`
}

// UpdateRequest is a partial update: nil fields are left untouched by the
// server.
type UpdateRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Category *int    `json:"category,omitempty"`

	PublicPermission        *permission.Level `json:"public_permission,omitempty"`
	AuthenticatedPermission *permission.Level `json:"authenticated_permission,omitempty"`
	TeamPermission          *permission.Level `json:"team_permission,omitempty"`
}

// List returns a page of posts, the server filters them down to what the
// viewer may read. Pages are 1-based.
func (c *Client) List(ctx context.Context, page, pageSize int) (blog.PostPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(pageSize))
	params.Set("offset", strconv.Itoa((page-1)*pageSize))

	var postPage blog.PostPage
	err := c.get(ctx, fmt.Sprintf("%s/api/posts/?%s", c.baseURL, params.Encode()), &postPage)
	return postPage, err
}

func (c *Client) Get(ctx context.Context, id int) (blog.Post, error) {
	var post blog.Post
	err := c.get(ctx, fmt.Sprintf("%s/api/posts/%d/", c.baseURL, id), &post)
	return post, err
}

func (c *Client) Create(ctx context.Context, r CreateRequest) (blog.Post, error) {
	r.AuthorPermission = permission.ReadEdit

	var post blog.Post
	err := c.send(ctx, "POST", fmt.Sprintf("%s/api/posts/create/", c.baseURL), r, &post)
	return post, err
}

func (c *Client) Update(ctx context.Context, id int, r UpdateRequest) (blog.Post, error) {
	var post blog.Post
	err := c.send(ctx, "PATCH", fmt.Sprintf("%s/api/posts/%d/update/", c.baseURL, id), r, &post)
	return post, err
}

func (c *Client) Delete(ctx context.Context, id int) error {
	return c.send(ctx, "DELETE", fmt.Sprintf("%s/api/posts/%d/delete/", c.baseURL, id), nil, nil)
}

// Comments returns a page of comments of a post. Pages are 1-based.
func (c *Client) Comments(ctx context.Context, postID, page, limit int) (blog.CommentPage, error) {
	params := url.Values{}
	params.Set("post_id", strconv.Itoa(postID))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa((page-1)*limit))

	var commentPage blog.CommentPage
	err := c.get(ctx, fmt.Sprintf("%s/api/comments/?%s", c.baseURL, params.Encode()), &commentPage)
	return commentPage, err
}

func (c *Client) CommentCount(ctx context.Context, postID int) (int, error) {
	var page struct {
		Count int `json:"count"`
	}
	err := c.get(ctx, fmt.Sprintf("%s/api/comments/?post_id=%d", c.baseURL, postID), &page)
	return page.Count, err
}

func (c *Client) AddComment(ctx context.Context, postID int, content string) (blog.Comment, error) {
	body := map[string]interface{}{
		"blog_post": postID,
		"content":   content,
	}

	var comment blog.Comment
	err := c.send(ctx, "POST", fmt.Sprintf("%s/api/comments/%d/", c.baseURL, postID), body, &comment)
	return comment, err
}

func (c *Client) Likes(ctx context.Context, postID, limit, offset int) (blog.LikePage, error) {
	params := url.Values{}
	params.Set("post", strconv.Itoa(postID))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var likePage blog.LikePage
	err := c.get(ctx, fmt.Sprintf("%s/api/likes/?%s", c.baseURL, params.Encode()), &likePage)
	return likePage, err
}

func (c *Client) Like(ctx context.Context, postID int) error {
	return c.send(ctx, "POST", fmt.Sprintf("%s/api/likes/%d/", c.baseURL, postID), struct{}{}, nil)
}

func (c *Client) Unlike(ctx context.Context, postID int) error {
	return c.send(ctx, "DELETE", fmt.Sprintf("%s/api/likes/%d/", c.baseURL, postID), nil, nil)
}

func (c *Client) get(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	return internal.Decode(res, v)
}

func (c *Client) send(ctx context.Context, method, url string, body, v interface{}) error {
	encoded, err := internal.EncodeBody(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, encoded)
	if err != nil {
		return err
	}
	if encoded != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	return internal.Decode(res, v)
}
