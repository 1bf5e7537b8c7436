package blog

import (
	"github.com/DaihanaA/avanzatech-blog/permission"
)

// Post is a blog post as served by the API. Permission fields drive the
// edit/delete affordances on the client, the server remains authoritative.
type Post struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Excerpt      string `json:"excerpt"`
	Author       string `json:"author"`
	Team         string `json:"team"`
	Timestamp    string `json:"timestamp"`
	Category     int    `json:"category"`
	CommentCount int    `json:"comment_count"`
	LikesCount   int    `json:"likes_count"`
	LikedByUser  bool   `json:"liked_by_user"`

	PublicPermission        permission.Level `json:"public_permission"`
	AuthenticatedPermission permission.Level `json:"authenticated_permission"`
	TeamPermission          permission.Level `json:"team_permission"`
	AuthorPermission        permission.Level `json:"author_permission"`
}

// Visibility extracts the user-editable permission triple of the post.
func (p Post) Visibility() permission.Visibility {
	return permission.Visibility{
		Public:        p.PublicPermission,
		Authenticated: p.AuthenticatedPermission,
		Team:          p.TeamPermission,
	}
}

// Access extracts the fields consulted by permission.CanEditOrDelete.
func (p Post) Access() permission.PostAccess {
	return permission.PostAccess{
		Author:        p.Author,
		Team:          p.Team,
		Authenticated: p.AuthenticatedPermission,
		TeamLevel:     p.TeamPermission,
	}
}

type Comment struct {
	ID        int    `json:"id"`
	BlogPost  int    `json:"blog_post"`
	User      string `json:"user"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	PostTitle string `json:"post_title"`
}

type Like struct {
	ID        int    `json:"id"`
	User      string `json:"user"`
	BlogPost  string `json:"blog_post"`
	Timestamp string `json:"timestamp"`
}

// Pagination mirrors the limit/offset envelope of the list endpoints.
type Pagination struct {
	Count       int     `json:"count"`
	TotalPages  int     `json:"total_pages"`
	CurrentPage int     `json:"current_page"`
	PageSize    int     `json:"page_size"`
	Next        *string `json:"next"`
	Previous    *string `json:"previous"`
}

type PostPage struct {
	Pagination
	Results []Post `json:"results"`
}

type CommentPage struct {
	Pagination
	Results []Comment `json:"results"`
}

type LikePage struct {
	Pagination
	Results []Like `json:"results"`
}
