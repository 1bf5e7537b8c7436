package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blog "github.com/DaihanaA/avanzatech-blog"
	"github.com/DaihanaA/avanzatech-blog/errors"
)

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/api/token/", r.URL.Path)

		var credentials blog.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&credentials))

		if credentials.Password != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"detail": "No active account found with the given credentials",
			})
			return
		}

		json.NewEncoder(w).Encode(blog.TokenPair{Access: "access-1", Refresh: "refresh-1"})
	}))
	defer server.Close()

	client := NewClient(http.DefaultClient, server.URL)

	pair, err := client.Login(context.Background(), blog.Credentials{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, blog.TokenPair{Access: "access-1", Refresh: "refresh-1"}, pair)

	_, err = client.Login(context.Background(), blog.Credentials{Username: "alice", Password: "wrong"})
	require.Error(t, err)
	errors.AssertCode(t, err, 401)
	assert.Equal(t, "incorrect username or password", err.Error())
}

func TestClient_Refresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token/refresh/", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "refresh-1", body["refresh"])

		json.NewEncoder(w).Encode(map[string]string{"access": "access-2"})
	}))
	defer server.Close()

	client := NewClient(http.DefaultClient, server.URL)

	access, err := client.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", access)
}

func TestClient_CurrentUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/current-user/", r.URL.Path)

		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Given token not valid for any token type"})
			return
		}

		json.NewEncoder(w).Encode(blog.Identity{Username: "alice", Team: "T1"})
	}))
	defer server.Close()

	client := NewClient(http.DefaultClient, server.URL)

	identity, err := client.CurrentUser(context.Background(), "access-1")
	require.NoError(t, err)
	assert.Equal(t, blog.Identity{Username: "alice", Team: "T1"}, identity)

	_, err = client.CurrentUser(context.Background(), "expired")
	require.Error(t, err)
	errors.AssertCode(t, err, 401)
}

func TestClient_Register(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/register/", r.URL.Path)

		var registration blog.Registration
		require.NoError(t, json.NewDecoder(r.Body).Decode(&registration))

		if registration.Username == "taken" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string][]string{
				"username": {"A user with that username already exists."},
			})
			return
		}

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(http.DefaultClient, server.URL)

	err := client.Register(context.Background(), blog.Registration{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	err = client.Register(context.Background(), blog.Registration{Username: "taken", Password: "s3cret"})
	require.Error(t, err)
	errors.AssertCode(t, err, 400)
	assert.Equal(t, "username already exists, pick another one", err.Error())
}
