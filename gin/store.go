package gin

import (
	"sync"
	"time"

	blog "github.com/DaihanaA/avanzatech-blog"
	"github.com/DaihanaA/avanzatech-blog/errors"
	"github.com/DaihanaA/avanzatech-blog/permission"
)

type account struct {
	Username string
	Password string
	Email    string
	Team     string
}

// Store holds the dev server's world in memory. It disappears with the
// process, which is the point: the dev server fakes the external API for
// local runs, it is not a persistence layer.
type Store struct {
	mu sync.Mutex

	accounts map[string]account

	posts     []blog.Post
	contents  map[int]string
	maxPostID int

	comments     []blog.Comment
	maxCommentID int

	likes     []blog.Like
	likedBy   map[int]map[string]int
	maxLikeID int
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]account),
		contents: make(map[int]string),
		likedBy:  make(map[int]map[string]int),
	}
}

func (s *Store) Register(username, password, email, team string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[username]; ok {
		return errors.New("A user with that username already exists.", errors.BadRequest())
	}
	s.accounts[username] = account{Username: username, Password: password, Email: email, Team: team}
	return nil
}

func (s *Store) Authenticate(username, password string) (account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok || acc.Password != password {
		return account{}, errors.New("No active account found with the given credentials", errors.Unauthorized())
	}
	return acc, nil
}

func (s *Store) Account(username string) (account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[username]
	return acc, ok
}

func (s *Store) InsertPost(post blog.Post, content string) blog.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.maxPostID++
	post.ID = s.maxPostID
	post.Timestamp = time.Now().Format("2006-01-02 15:04:05")
	s.posts = append(s.posts, post)
	s.contents[post.ID] = content
	return post
}

func (s *Store) Post(id int, viewer permission.Viewer) (blog.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, post := range s.posts {
		if post.ID == id {
			return s.decorate(post, viewer.Username), true
		}
	}
	return blog.Post{}, false
}

func (s *Store) UpdatePost(updated blog.Post, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, post := range s.posts {
		if post.ID == updated.ID {
			s.posts[i] = updated
			s.contents[updated.ID] = content
			return
		}
	}
}

func (s *Store) DeletePost(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.posts[:0]
	for _, post := range s.posts {
		if post.ID != id {
			posts = append(posts, post)
		}
	}
	s.posts = posts
	delete(s.contents, id)

	comments := s.comments[:0]
	for _, comment := range s.comments {
		if comment.BlogPost != id {
			comments = append(comments, comment)
		}
	}
	s.comments = comments

	deleted := make(map[int]bool, len(s.likedBy[id]))
	for _, likeID := range s.likedBy[id] {
		deleted[likeID] = true
	}
	delete(s.likedBy, id)

	likes := s.likes[:0]
	for _, like := range s.likes {
		if !deleted[like.ID] {
			likes = append(likes, like)
		}
	}
	s.likes = likes
}

// Posts returns the posts the viewer may read, newest first.
func (s *Store) Posts(viewer permission.Viewer) []blog.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := make([]blog.Post, 0, len(s.posts))
	for i := len(s.posts) - 1; i >= 0; i-- {
		post := s.posts[i]
		if canRead(post, viewer) {
			visible = append(visible, s.decorate(post, viewer.Username))
		}
	}
	return visible
}

func (s *Store) InsertComment(postID int, user, content string) (blog.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title, ok := s.postTitle(postID)
	if !ok {
		return blog.Comment{}, false
	}

	s.maxCommentID++
	comment := blog.Comment{
		ID:        s.maxCommentID,
		BlogPost:  postID,
		User:      user,
		Content:   content,
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
		PostTitle: title,
	}
	s.comments = append(s.comments, comment)
	return comment, true
}

func (s *Store) Comments(postID int) []blog.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	comments := make([]blog.Comment, 0)
	for _, comment := range s.comments {
		if comment.BlogPost == postID {
			comments = append(comments, comment)
		}
	}
	return comments
}

func (s *Store) Like(postID int, user string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	title, ok := s.postTitle(postID)
	if !ok {
		return false
	}

	if _, ok := s.likedBy[postID][user]; ok {
		return true
	}

	s.maxLikeID++
	if s.likedBy[postID] == nil {
		s.likedBy[postID] = make(map[string]int)
	}
	s.likedBy[postID][user] = s.maxLikeID
	s.likes = append(s.likes, blog.Like{
		ID:        s.maxLikeID,
		User:      user,
		BlogPost:  title,
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	})
	return true
}

func (s *Store) Unlike(postID int, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.likedBy[postID][user]
	if !ok {
		return
	}
	delete(s.likedBy[postID], user)

	likes := s.likes[:0]
	for _, like := range s.likes {
		if like.ID != id {
			likes = append(likes, like)
		}
	}
	s.likes = likes
}

func (s *Store) Likes(postID int) []blog.Like {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.likedBy[postID]
	likes := make([]blog.Like, 0, len(ids))
	for _, like := range s.likes {
		for _, id := range ids {
			if like.ID == id {
				likes = append(likes, like)
			}
		}
	}
	return likes
}

// decorate fills the derived fields. Callers must hold s.mu.
func (s *Store) decorate(post blog.Post, username string) blog.Post {
	content := s.contents[post.ID]
	post.Content = content
	if len(content) > 200 {
		post.Excerpt = content[:200]
	} else {
		post.Excerpt = content
	}

	post.CommentCount = 0
	for _, comment := range s.comments {
		if comment.BlogPost == post.ID {
			post.CommentCount++
		}
	}
	post.LikesCount = len(s.likedBy[post.ID])
	if username != "" {
		_, post.LikedByUser = s.likedBy[post.ID][username]
	}
	return post
}

// postTitle looks a post up without locking. Callers must hold s.mu.
func (s *Store) postTitle(id int) (string, bool) {
	for _, post := range s.posts {
		if post.ID == id {
			return post.Title, true
		}
	}
	return "", false
}

// canRead resolves the viewer's tier from the inside out and checks that the
// tier grants at least read.
func canRead(post blog.Post, viewer permission.Viewer) bool {
	if viewer.Authenticated && viewer.Username == post.Author {
		return true
	}
	if viewer.Authenticated && viewer.Team != "" && viewer.Team == post.Team {
		return post.TeamPermission.Rank() >= permission.Read.Rank()
	}
	if viewer.Authenticated {
		return post.AuthenticatedPermission.Rank() >= permission.Read.Rank()
	}
	return post.PublicPermission.Rank() >= permission.Read.Rank()
}
