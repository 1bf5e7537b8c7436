package gin

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	blog "github.com/DaihanaA/avanzatech-blog"
	"github.com/DaihanaA/avanzatech-blog/jwt"
	"github.com/DaihanaA/avanzatech-blog/permission"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 24 * time.Hour

	defaultPageSize = 10
)

// New builds the dev server: an in-memory stand-in for the blog API, with
// the same routes, payloads and permission behavior. Local development only.
func New(store *Store, tokens *jwt.EncodeDecoder) http.Handler {
	s := &server{store: store, tokens: tokens}

	router := gin.Default()

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Page not found"})
	})

	router.POST("/api/register/", s.register)
	router.POST("/api/token/", s.token)
	router.POST("/api/token/refresh/", s.refresh)
	router.GET("/api/current-user/", s.currentUser)

	router.GET("/api/posts/", s.listPosts)
	router.GET("/api/posts/:id/", s.getPost)
	router.POST("/api/posts/create/", s.createPost)
	router.PATCH("/api/posts/:id/update/", s.updatePost)
	router.DELETE("/api/posts/:id/delete/", s.deletePost)

	router.GET("/api/comments/", s.listComments)
	router.POST("/api/comments/:id/", s.addComment)

	router.GET("/api/likes/", s.listLikes)
	router.POST("/api/likes/:id/", s.like)
	router.DELETE("/api/likes/:id/", s.unlike)

	return router
}

type server struct {
	store  *Store
	tokens *jwt.EncodeDecoder
}

func (s *server) register(c *gin.Context) {
	var registration blog.Registration
	if err := c.BindJSON(&registration); err != nil {
		return
	}
	if registration.Username == "" || registration.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "username and password are required"})
		return
	}

	if err := s.store.Register(registration.Username, registration.Password, registration.Email, registration.Team); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"username": []string{err.Error()}})
		return
	}
	c.Status(http.StatusCreated)
}

func (s *server) token(c *gin.Context) {
	var credentials blog.Credentials
	if err := c.BindJSON(&credentials); err != nil {
		return
	}

	acc, err := s.store.Authenticate(credentials.Username, credentials.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
		return
	}

	access, err := s.tokens.Encode(acc.Username, accessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	refresh, err := s.tokens.Encode(acc.Username, refreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, blog.TokenPair{Access: access, Refresh: refresh})
}

func (s *server) refresh(c *gin.Context) {
	var body struct {
		Refresh string `json:"refresh"`
	}
	if err := c.BindJSON(&body); err != nil {
		return
	}

	username, err := s.tokens.Decode(body.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type"})
		return
	}

	access, err := s.tokens.Encode(username, accessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (s *server) currentUser(c *gin.Context) {
	viewer, ok := s.viewer(c)
	if !ok || !viewer.Authenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return
	}

	c.JSON(http.StatusOK, blog.Identity{Username: viewer.Username, Team: viewer.Team})
}

func (s *server) listPosts(c *gin.Context) {
	viewer, ok := s.viewer(c)
	if !ok {
		return
	}

	limit, offset := pageParams(c)
	posts := s.store.Posts(viewer)

	page := blog.PostPage{
		Pagination: paginate(len(posts), limit, offset),
		Results:    slice(posts, limit, offset),
	}
	c.JSON(http.StatusOK, page)
}

func (s *server) getPost(c *gin.Context) {
	viewer, ok := s.viewer(c)
	if !ok {
		return
	}

	post, found := s.postParam(c, viewer)
	if !found {
		return
	}
	if !canRead(post, viewer) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *server) createPost(c *gin.Context) {
	viewer, ok := s.viewer(c)
	if !ok {
		return
	}
	if !viewer.Authenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return
	}

	var body struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Category int    `json:"category"`

		PublicPermission        permission.Level `json:"public_permission"`
		AuthenticatedPermission permission.Level `json:"authenticated_permission"`
		TeamPermission          permission.Level `json:"team_permission"`
	}
	if err := c.BindJSON(&body); err != nil {
		return
	}

	res, err := permission.ValidateVisibility(permission.Visibility{
		Public:        body.PublicPermission,
		Authenticated: body.AuthenticatedPermission,
		Team:          body.TeamPermission,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if !res.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"detail": res.Reason})
		return
	}

	post := s.store.InsertPost(blog.Post{
		Title:                   body.Title,
		Author:                  viewer.Username,
		Team:                    viewer.Team,
		Category:                body.Category,
		PublicPermission:        body.PublicPermission,
		AuthenticatedPermission: body.AuthenticatedPermission,
		TeamPermission:          body.TeamPermission,
		AuthorPermission:        permission.ReadEdit,
	}, body.Content)

	post, _ = s.store.Post(post.ID, viewer)
	c.JSON(http.StatusCreated, post)
}

func (s *server) updatePost(c *gin.Context) {
	viewer, ok := s.viewer(c)
	if !ok {
		return
	}

	post, found := s.postParam(c, viewer)
	if !found {
		return
	}
	if !permission.CanEditOrDelete(post.Access(), viewer) {
		c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
		return
	}

	var body struct {
		Title    *string `json:"title"`
		Content  *string `json:"content"`
		Category *int    `json:"category"`

		PublicPermission        *permission.Level `json:"public_permission"`
		AuthenticatedPermission *permission.Level `json:"authenticated_permission"`
		TeamPermission          *permission.Level `json:"team_permission"`
	}
	if err := c.BindJSON(&body); err != nil {
		return
	}

	content := post.Content
	if body.Title != nil {
		post.Title = *body.Title
	}
	if body.Content != nil {
		content = *body.Content
	}
	if body.Category != nil {
		post.Category = *body.Category
	}
	if body.PublicPermission != nil {
		post.PublicPermission = *body.PublicPermission
	}
	if body.AuthenticatedPermission != nil {
		post.AuthenticatedPermission = *body.AuthenticatedPermission
	}
	if body.TeamPermission != nil {
		post.TeamPermission = *body.TeamPermission
	}

	res, err := permission.ValidateVisibility(post.Visibility())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if !res.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"detail": res.Reason})
		return
	}

	s.store.UpdatePost(post, content)

	post, _ = s.store.Post(post.ID, viewer)
	c.JSON(http.StatusOK, post)
}

func (s *server) deletePost(c *gin.Context) {
	viewer, ok := s.viewer(c)
	if !ok {
		return
	}

	post, found := s.postParam(c, viewer)
	if !found {
		return
	}
	if !permission.CanEditOrDelete(post.Access(), viewer) {
		c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
		return
	}

	s.store.DeletePost(post.ID)
	c.Status(http.StatusNoContent)
}

func (s *server) listComments(c *gin.Context) {
	viewer, ok := s.viewer(c)
	if !ok {
		return
	}

	postID, err := strconv.Atoi(c.Query("post_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "post_id is required"})
		return
	}

	post, found := s.store.Post(postID, viewer)
	if !found || !canRead(post, viewer) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	limit, offset := pageParams(c)
	comments := s.store.Comments(postID)

	page := blog.CommentPage{
		Pagination: paginate(len(comments), limit, offset),
		Results:    slice(comments, limit, offset),
	}
	c.JSON(http.StatusOK, page)
}

func (s *server) addComment(c *gin.Context) {
	viewer, ok := s.viewer(c)
	if !ok {
		return
	}
	if !viewer.Authenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return
	}

	id, err := strconv.Atoi(strings.TrimSuffix(c.Param("id"), "/"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid post id"})
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.BindJSON(&body); err != nil {
		return
	}

	post, found := s.store.Post(id, viewer)
	if !found || !canRead(post, viewer) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	comment, created := s.store.InsertComment(id, viewer.Username, body.Content)
	if !created {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *server) listLikes(c *gin.Context) {
	viewer, ok := s.viewer(c)
	if !ok {
		return
	}

	postID, err := strconv.Atoi(c.Query("post"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "post is required"})
		return
	}

	post, found := s.store.Post(postID, viewer)
	if !found || !canRead(post, viewer) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	limit, offset := pageParams(c)
	likes := s.store.Likes(postID)

	page := blog.LikePage{
		Pagination: paginate(len(likes), limit, offset),
		Results:    slice(likes, limit, offset),
	}
	c.JSON(http.StatusOK, page)
}

func (s *server) like(c *gin.Context) {
	s.toggleLike(c, true)
}

func (s *server) unlike(c *gin.Context) {
	s.toggleLike(c, false)
}

func (s *server) toggleLike(c *gin.Context, add bool) {
	viewer, ok := s.viewer(c)
	if !ok {
		return
	}
	if !viewer.Authenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return
	}

	id, err := strconv.Atoi(strings.TrimSuffix(c.Param("id"), "/"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid post id"})
		return
	}

	post, found := s.store.Post(id, viewer)
	if !found || !canRead(post, viewer) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	if add {
		s.store.Like(id, viewer.Username)
	} else {
		s.store.Unlike(id, viewer.Username)
	}
	c.Status(http.StatusNoContent)
}

// viewer resolves the acting identity of the request. An absent header is an
// anonymous viewer, a present but invalid token is a 401.
func (s *server) viewer(c *gin.Context) (permission.Viewer, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return permission.Viewer{}, true
	}
	if !strings.HasPrefix(header, "Bearer ") {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No bearer"})
		return permission.Viewer{}, false
	}

	username, err := s.tokens.Decode(header[len("Bearer "):])
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type"})
		return permission.Viewer{}, false
	}

	acc, ok := s.store.Account(username)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type"})
		return permission.Viewer{}, false
	}

	return permission.Viewer{Authenticated: true, Username: acc.Username, Team: acc.Team}, true
}

func (s *server) postParam(c *gin.Context, viewer permission.Viewer) (blog.Post, bool) {
	id, err := strconv.Atoi(strings.TrimSuffix(c.Param("id"), "/"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid post id"})
		return blog.Post{}, false
	}

	post, found := s.store.Post(id, viewer)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return blog.Post{}, false
	}
	return post, true
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	offset, err = strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func paginate(count, limit, offset int) blog.Pagination {
	totalPages := (count + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}
	return blog.Pagination{
		Count:       count,
		TotalPages:  totalPages,
		CurrentPage: offset/limit + 1,
		PageSize:    limit,
	}
}

func slice[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
