package auth

import (
	"context"
	"sync"

	blog "github.com/DaihanaA/avanzatech-blog"
	"github.com/DaihanaA/avanzatech-blog/errors"
	"github.com/DaihanaA/avanzatech-blog/log"
	"github.com/DaihanaA/avanzatech-blog/permission"
)

// IdentityClient talks to the identity endpoints of the API. Implemented by
// clients/identity, abstracted here so tests can substitute it.
type IdentityClient interface {
	Login(ctx context.Context, credentials blog.Credentials) (blog.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	CurrentUser(ctx context.Context, accessToken string) (blog.Identity, error)
	Register(ctx context.Context, registration blog.Registration) error
}

// State is the single owner of the process-wide authenticated identity. It
// persists the session in a Store, exposes replay-latest feeds for the
// authenticated flag and the identity, and is the only writer of the durable
// session keys. Consumers read through getters or subscriptions, never
// through the store.
type State struct {
	store  Store
	client IdentityClient
	logger log.Logger

	// OnLogout, when set, runs at the end of Logout. The caller hooks its
	// navigation to the landing view here.
	OnLogout func()

	mu            sync.Mutex
	epoch         int
	authenticated bool

	authFeed *Feed[bool]
	userFeed *Feed[*blog.Identity]
}

// NewState builds the state from the persisted session: the authenticated
// flag is seeded from token presence and the identity from the stored
// username and team.
func NewState(store Store, client IdentityClient, logger log.Logger) *State {
	s := &State{
		store:  store,
		client: client,
		logger: logger,
	}

	token, _ := store.Get(KeyAccessToken)
	s.authenticated = token != ""
	s.authFeed = newFeed(s.authenticated)

	var identity *blog.Identity
	if username, _ := store.Get(KeyUsername); username != "" {
		team, _ := store.Get(KeyTeam)
		identity = &blog.Identity{Username: username, Team: team}
	}
	s.userFeed = newFeed(identity)

	return s
}

// Authenticated is the feed of the authenticated flag. Subscribers receive
// the current value immediately and every transition afterwards.
func (s *State) Authenticated() *Feed[bool] { return s.authFeed }

// User is the feed of the current identity, nil when anonymous or when the
// identity fetch has not completed. authenticated=true with a nil identity
// is a valid transient: token possession, not profile data, defines
// authenticated.
func (s *State) User() *Feed[*blog.Identity] { return s.userFeed }

// Login exchanges credentials for tokens, persists them, flips the
// authenticated flag and then fetches the identity. A failing identity fetch
// does not roll back the login. A failing login clears any previously stored
// tokens and surfaces the original error.
func (s *State) Login(ctx context.Context, credentials blog.Credentials) error {
	pair, err := s.client.Login(ctx, credentials)
	if err != nil {
		if dErr := s.store.Delete(KeyAccessToken, KeyRefreshToken); dErr != nil {
			s.logger.Errorf("could not clear stored tokens: %v", dErr)
		}
		return err
	}

	if err := s.store.Set(KeyAccessToken, pair.Access); err != nil {
		return errors.New("could not persist access token", errors.WithCause(err))
	}
	if err := s.store.Set(KeyRefreshToken, pair.Refresh); err != nil {
		return errors.New("could not persist refresh token", errors.WithCause(err))
	}

	s.mu.Lock()
	s.epoch++
	s.authenticated = true
	s.authFeed.publish(true)
	s.mu.Unlock()

	// The caller may navigate as soon as Login returns: the identity fetch
	// has completed by then, successfully or not.
	s.CurrentUser(ctx)
	return nil
}

// Register creates a new account. No session state changes until the user
// logs in.
func (s *State) Register(ctx context.Context, registration blog.Registration) error {
	return s.client.Register(ctx, registration)
}

// Logout clears the durable session, resets the identity and the
// authenticated flag, and invalidates any in-flight identity fetch.
func (s *State) Logout() {
	if err := s.store.Delete(KeyAccessToken, KeyRefreshToken, KeyUsername, KeyTeam); err != nil {
		s.logger.Errorf("could not clear session keys: %v", err)
	}

	s.mu.Lock()
	s.epoch++
	s.authenticated = false
	s.userFeed.publish(nil)
	s.authFeed.publish(false)
	s.mu.Unlock()

	if s.OnLogout != nil {
		s.OnLogout()
	}
}

// CurrentUser resolves the identity behind the stored access token. Failures
// degrade to a nil identity with cached fields cleared, they never flip the
// authenticated flag. A logout or re-login while the fetch is in flight
// discards the late result.
func (s *State) CurrentUser(ctx context.Context) *blog.Identity {
	token, _ := s.store.Get(KeyAccessToken)
	if token == "" {
		if err := s.store.Delete(KeyTeam); err != nil {
			s.logger.Errorf("could not clear cached team: %v", err)
		}
		s.mu.Lock()
		s.userFeed.publish(nil)
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	identity, err := s.client.CurrentUser(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		s.logger.Print("discarding identity fetched for a stale session")
		return nil
	}

	if err != nil || identity.Username == "" {
		if err != nil {
			s.logger.Errorf("could not fetch current user: %v", err)
		}
		if dErr := s.store.Delete(KeyUsername, KeyTeam); dErr != nil {
			s.logger.Errorf("could not clear cached identity: %v", dErr)
		}
		s.userFeed.publish(nil)
		return nil
	}

	if sErr := s.store.Set(KeyUsername, identity.Username); sErr != nil {
		s.logger.Errorf("could not persist username: %v", sErr)
	}
	if identity.Team != "" {
		if sErr := s.store.Set(KeyTeam, identity.Team); sErr != nil {
			s.logger.Errorf("could not persist team: %v", sErr)
		}
	} else if dErr := s.store.Delete(KeyTeam); dErr != nil {
		s.logger.Errorf("could not clear cached team: %v", dErr)
	}

	s.userFeed.publish(&identity)
	return &identity
}

// RefreshToken exchanges the stored refresh token for a new access token.
// It fails fast, without a network call, when no refresh token is stored.
func (s *State) RefreshToken(ctx context.Context) (string, error) {
	refresh, _ := s.store.Get(KeyRefreshToken)
	if refresh == "" {
		return "", errors.New("no refresh token available", errors.Session())
	}

	access, err := s.client.Refresh(ctx, refresh)
	if err != nil {
		return "", errors.New("error refreshing token", errors.WithCause(err))
	}

	if err := s.store.Set(KeyAccessToken, access); err != nil {
		return "", errors.New("could not persist access token", errors.WithCause(err))
	}
	return access, nil
}

// SetAuthenticated overrides the authenticated flag directly, bypassing any
// token check. Reconciliation hook, not part of the normal login flow.
func (s *State) SetAuthenticated(authenticated bool) {
	s.mu.Lock()
	s.authenticated = authenticated
	s.authFeed.publish(authenticated)
	s.mu.Unlock()
}

// InitializeAuth restores the session at startup: a stored token flips the
// flag and kicks an identity fetch. Calling it again is a no-op, state is
// never duplicated.
func (s *State) InitializeAuth(ctx context.Context) {
	token, _ := s.store.Get(KeyAccessToken)
	if token == "" {
		return
	}

	s.mu.Lock()
	if s.authenticated && s.epoch > 0 {
		s.mu.Unlock()
		return
	}
	s.epoch++
	s.authenticated = true
	s.authFeed.publish(true)
	s.mu.Unlock()

	s.CurrentUser(ctx)
}

// Token returns the stored access token, empty when anonymous.
func (s *State) Token() string {
	token, _ := s.store.Get(KeyAccessToken)
	return token
}

func (s *State) IsLoggedIn() bool {
	return s.Token() != ""
}

// Username returns the identity's username, empty when unknown.
func (s *State) Username() string {
	if identity := s.userFeed.Latest(); identity != nil {
		return identity.Username
	}
	return ""
}

// UserTeam returns the cached team, empty when the user has none.
func (s *State) UserTeam() string {
	team, _ := s.store.Get(KeyTeam)
	return team
}

// Viewer derives the acting identity for a permission evaluation.
func (s *State) Viewer() permission.Viewer {
	return permission.Viewer{
		Authenticated: s.authFeed.Latest(),
		Username:      s.Username(),
		Team:          s.UserTeam(),
	}
}
