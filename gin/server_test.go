package gin

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blog "github.com/DaihanaA/avanzatech-blog"
	"github.com/DaihanaA/avanzatech-blog/auth"
	"github.com/DaihanaA/avanzatech-blog/clients"
	"github.com/DaihanaA/avanzatech-blog/clients/identity"
	postclient "github.com/DaihanaA/avanzatech-blog/clients/post"
	"github.com/DaihanaA/avanzatech-blog/errors"
	"github.com/DaihanaA/avanzatech-blog/jwt"
	"github.com/DaihanaA/avanzatech-blog/log"
	"github.com/DaihanaA/avanzatech-blog/permission"
)

// session bundles the real clients the way the CLI wires them, pointed at a
// test server.
type session struct {
	state *auth.State
	posts *postclient.Client
}

func newSession(baseURL string) *session {
	identities := identity.NewClient(http.DefaultClient, baseURL)
	state := auth.NewState(auth.NewInMemStore(), identities, log.New("test"))
	bearer := clients.NewClient(http.DefaultClient, state)

	return &session{
		state: state,
		posts: postclient.NewClient(bearer, baseURL),
	}
}

func (s *session) login(t *testing.T, username, password string) {
	t.Helper()
	err := s.state.Login(context.Background(), blog.Credentials{Username: username, Password: password})
	require.NoError(t, err)
}

func startServer(t *testing.T) (string, *Store) {
	t.Helper()

	store := NewStore()
	srv := httptest.NewServer(New(store, jwt.NewEncodeDecoder([]byte("test-key"))))
	t.Cleanup(srv.Close)
	return srv.URL, store
}

func seedAccounts(t *testing.T, store *Store) {
	t.Helper()
	require.NoError(t, store.Register("alice", "password", "alice@example.com", "green"))
	require.NoError(t, store.Register("bob", "password", "bob@example.com", "green"))
	require.NoError(t, store.Register("carol", "password", "carol@example.com", "blue"))
}

func TestServer_AuthFlow(t *testing.T) {
	url, _ := startServer(t)
	ctx := context.Background()

	s := newSession(url)
	err := s.state.Register(ctx, blog.Registration{
		Username: "dave",
		Email:    "dave@example.com",
		Password: "password",
		Team:     "green",
	})
	require.NoError(t, err)

	err = s.state.Register(ctx, blog.Registration{Username: "dave", Password: "other"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username already exists")

	err = s.state.Login(ctx, blog.Credentials{Username: "dave", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "incorrect username or password", err.Error())
	assert.False(t, s.state.IsLoggedIn())

	s.login(t, "dave", "password")
	assert.True(t, s.state.IsLoggedIn())
	assert.Equal(t, "dave", s.state.Username())
	assert.Equal(t, "green", s.state.UserTeam())

	// The refresh endpoint issues a new access token for the stored refresh
	// token.
	access, err := s.state.RefreshToken(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.Equal(t, access, s.state.Token())

	me := s.state.CurrentUser(ctx)
	require.NotNil(t, me)
	assert.Equal(t, "dave", me.Username)
}

func TestServer_PostVisibility(t *testing.T) {
	url, store := startServer(t)
	ctx := context.Background()
	seedAccounts(t, store)

	alice := newSession(url)
	alice.login(t, "alice", "password")

	created, err := alice.posts.Create(ctx, postclient.CreateRequest{
		Title:                   "Team only",
		Content:                 "For green eyes only",
		PublicPermission:        permission.None,
		AuthenticatedPermission: permission.None,
		TeamPermission:          permission.Read,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Author)
	assert.Equal(t, "green", created.Team)
	assert.Equal(t, permission.ReadEdit, created.AuthorPermission)

	// Anonymous readers see nothing.
	anonymous := newSession(url)
	page, err := anonymous.posts.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Results)

	_, err = anonymous.posts.Get(ctx, created.ID)
	errors.AssertCode(t, err, http.StatusNotFound)

	// A teammate can read but not edit: the team tier only grants Read.
	bob := newSession(url)
	bob.login(t, "bob", "password")

	page, err = bob.posts.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Team only", page.Results[0].Title)
	assert.False(t, permission.CanEditOrDelete(page.Results[0].Access(), bob.state.Viewer()))

	newTitle := "Renamed"
	_, err = bob.posts.Update(ctx, created.ID, postclient.UpdateRequest{Title: &newTitle})
	errors.AssertCode(t, err, http.StatusForbidden)

	// Another team sees nothing.
	carol := newSession(url)
	carol.login(t, "carol", "password")

	page, err = carol.posts.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Results)

	// The author edits and deletes regardless of the triple.
	updated, err := alice.posts.Update(ctx, created.ID, postclient.UpdateRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "For green eyes only", updated.Content)

	require.NoError(t, alice.posts.Delete(ctx, created.ID))
	_, err = alice.posts.Get(ctx, created.ID)
	errors.AssertCode(t, err, http.StatusNotFound)
}

func TestServer_CreateRejectsBrokenVisibility(t *testing.T) {
	url, store := startServer(t)
	ctx := context.Background()
	seedAccounts(t, store)

	alice := newSession(url)
	alice.login(t, "alice", "password")

	// Wider access on an outer tier than on an inner one.
	_, err := alice.posts.Create(ctx, postclient.CreateRequest{
		Title:                   "Broken",
		PublicPermission:        permission.Read,
		AuthenticatedPermission: permission.None,
		TeamPermission:          permission.Read,
	})
	errors.AssertCode(t, err, http.StatusBadRequest)
	assert.Contains(t, err.Error(), "authenticated permission is None")

	// A level outside the tier's domain.
	_, err = alice.posts.Create(ctx, postclient.CreateRequest{
		Title:                   "Broken",
		PublicPermission:        permission.ReadEdit,
		AuthenticatedPermission: permission.ReadEdit,
		TeamPermission:          permission.ReadEdit,
	})
	errors.AssertCode(t, err, http.StatusBadRequest)

	// Anonymous creation is refused outright.
	anonymous := newSession(url)
	_, err = anonymous.posts.Create(ctx, postclient.CreateRequest{
		Title:                   "Anonymous",
		PublicPermission:        permission.Read,
		AuthenticatedPermission: permission.Read,
		TeamPermission:          permission.Read,
	})
	errors.AssertCode(t, err, http.StatusUnauthorized)
}

func TestServer_CommentsAndLikes(t *testing.T) {
	url, store := startServer(t)
	ctx := context.Background()
	seedAccounts(t, store)

	alice := newSession(url)
	alice.login(t, "alice", "password")

	created, err := alice.posts.Create(ctx, postclient.CreateRequest{
		Title:                   "Open post",
		Content:                 "Everyone may read this",
		PublicPermission:        permission.Read,
		AuthenticatedPermission: permission.Read,
		TeamPermission:          permission.Read,
	})
	require.NoError(t, err)

	bob := newSession(url)
	bob.login(t, "bob", "password")

	comment, err := bob.posts.AddComment(ctx, created.ID, "Nice one")
	require.NoError(t, err)
	assert.Equal(t, "bob", comment.User)
	assert.Equal(t, "Open post", comment.PostTitle)

	// Anonymous readers see the comments of a public post but cannot write.
	anonymous := newSession(url)
	comments, err := anonymous.posts.Comments(ctx, created.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, comments.Results, 1)
	assert.Equal(t, "Nice one", comments.Results[0].Content)

	_, err = anonymous.posts.AddComment(ctx, created.ID, "Drive-by")
	errors.AssertCode(t, err, http.StatusUnauthorized)

	count, err := bob.posts.CommentCount(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, bob.posts.Like(ctx, created.ID))

	post, err := bob.posts.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, post.LikesCount)
	assert.True(t, post.LikedByUser)
	assert.Equal(t, 1, post.CommentCount)

	// The author does not see someone else's like as their own.
	post, err = alice.posts.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, post.LikedByUser)

	likes, err := bob.posts.Likes(ctx, created.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, likes.Results, 1)
	assert.Equal(t, "bob", likes.Results[0].User)

	require.NoError(t, bob.posts.Unlike(ctx, created.ID))

	post, err = bob.posts.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, post.LikesCount)
	assert.False(t, post.LikedByUser)
}

func TestServer_Pagination(t *testing.T) {
	url, store := startServer(t)
	ctx := context.Background()
	seedAccounts(t, store)

	alice := newSession(url)
	alice.login(t, "alice", "password")

	for i := 1; i <= 5; i++ {
		_, err := alice.posts.Create(ctx, postclient.CreateRequest{
			Title:                   fmt.Sprintf("Post %d", i),
			PublicPermission:        permission.Read,
			AuthenticatedPermission: permission.Read,
			TeamPermission:          permission.Read,
		})
		require.NoError(t, err)
	}

	page, err := alice.posts.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Count)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "Post 5", page.Results[0].Title)

	page, err = alice.posts.List(ctx, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.CurrentPage)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Post 1", page.Results[0].Title)
}
