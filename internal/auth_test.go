package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// tokenServer issues access tokens for refresh and authorization-code grants
type tokenServer struct {
	*httptest.Server
	requests atomic.Int32
	grants   chan url.Values
}

func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()
	ts := &tokenServer{grants: make(chan url.Values, 4)}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := ts.requests.Add(1)
		_ = r.ParseForm()
		ts.grants <- r.PostForm

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  fmt.Sprintf("access-%d", n),
			"refresh_token": "refresh-token",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tokenServer) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.example.com/o/oauth2/auth",
			TokenURL: ts.URL + "/token",
		},
		Scopes: []string{"https://www.googleapis.com/auth/youtube.upload"},
	}
}

func TestCredentialRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	cred := &Credential{AccessToken: "a", RefreshToken: "r", Expiry: time.Now().Add(time.Hour).Round(time.Second)}
	require.NoError(t, SaveCredential(path, cred))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadCredential(path)
	require.NoError(t, err)
	assert.Equal(t, cred.AccessToken, loaded.AccessToken)
	assert.True(t, cred.Expiry.Equal(loaded.Expiry))
}

func TestLoadCredentialRejectsEmptyToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token_type":"Bearer"}`), 0600))

	_, err := LoadCredential(path)
	assert.Error(t, err)
}

func TestTokenSourceUsesCachedCredential(t *testing.T) {
	ts := newTokenServer(t)
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, SaveCredential(path, &Credential{
		AccessToken: "cached", RefreshToken: "refresh-token", TokenType: "Bearer",
		Expiry: time.Now().Add(time.Hour),
	}))

	ui, _ := newTestUI()
	auth := NewAuthenticatorWithConfig(ts.oauthConfig(), path, ui, WithURLOpener(func(string) error {
		t.Error("interactive flow must not run")
		return nil
	}))

	source, err := auth.TokenSource(context.Background())
	require.NoError(t, err)
	tok, err := source.Token()
	require.NoError(t, err)

	assert.Equal(t, "cached", tok.AccessToken)
	assert.Zero(t, ts.requests.Load())
}

func TestTokenSourceRefreshesExpiredCredential(t *testing.T) {
	ts := newTokenServer(t)
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, SaveCredential(path, &Credential{
		AccessToken: "stale", RefreshToken: "refresh-token", TokenType: "Bearer",
		Expiry: time.Now().Add(-time.Hour),
	}))

	ui, _ := newTestUI()
	auth := NewAuthenticatorWithConfig(ts.oauthConfig(), path, ui)

	source, err := auth.TokenSource(context.Background())
	require.NoError(t, err)
	tok, err := source.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)

	grant := <-ts.grants
	assert.Equal(t, "refresh_token", grant.Get("grant_type"))

	saved, err := LoadCredential(path)
	require.NoError(t, err)
	assert.Equal(t, "access-1", saved.AccessToken)
	assert.Equal(t, "refresh-token", saved.RefreshToken)
	assert.Equal(t, "client-id", saved.ClientID)
	assert.Equal(t, ts.URL+"/token", saved.TokenURI)
}

func TestTokenSourceRefreshFailureIsAuthenticationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid_grant"}`)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, SaveCredential(path, &Credential{
		AccessToken: "stale", RefreshToken: "revoked", Expiry: time.Now().Add(-time.Hour),
	}))

	ui, _ := newTestUI()
	auth := NewAuthenticatorWithConfig(&oauth2.Config{
		ClientID: "client-id",
		Endpoint: oauth2.Endpoint{TokenURL: server.URL},
	}, path, ui)

	_, err := auth.TokenSource(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)
}

// browser follows the authorization URL by calling the loopback redirect directly
func browser(t *testing.T, status *int, mutate func(q url.Values)) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		params := u.Query()

		redirect := strings.Replace(params.Get("redirect_uri"), "localhost", "127.0.0.1", 1)
		q := url.Values{"code": {"auth-code"}, "state": {params.Get("state")}}
		if mutate != nil {
			mutate(q)
		}

		resp, err := http.Get(redirect + "?" + q.Encode())
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		*status = resp.StatusCode
		return nil
	}
}

func TestTokenSourceInteractiveFlow(t *testing.T) {
	ts := newTokenServer(t)
	path := filepath.Join(t.TempDir(), "token.json")

	var status int
	ui, _ := newTestUI()
	auth := NewAuthenticatorWithConfig(ts.oauthConfig(), path, ui,
		WithListenAddr("127.0.0.1:0"),
		WithURLOpener(browser(t, &status, nil)),
	)

	source, err := auth.TokenSource(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	grant := <-ts.grants
	assert.Equal(t, "authorization_code", grant.Get("grant_type"))
	assert.Equal(t, "auth-code", grant.Get("code"))
	assert.True(t, strings.HasPrefix(grant.Get("redirect_uri"), "http://localhost:"))

	tok, err := source.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)

	saved, err := LoadCredential(path)
	require.NoError(t, err)
	assert.Equal(t, "access-1", saved.AccessToken)
	assert.Equal(t, "refresh-token", saved.RefreshToken)
}

func TestTokenSourceInteractiveStateMismatch(t *testing.T) {
	ts := newTokenServer(t)
	path := filepath.Join(t.TempDir(), "token.json")

	var status int
	ui, _ := newTestUI()
	auth := NewAuthenticatorWithConfig(ts.oauthConfig(), path, ui,
		WithListenAddr("127.0.0.1:0"),
		WithURLOpener(browser(t, &status, func(q url.Values) { q.Set("state", "forged") })),
	)

	_, err := auth.TokenSource(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Zero(t, ts.requests.Load())
	assert.NoFileExists(t, path)
}

func TestTokenSourceInteractiveCancelled(t *testing.T) {
	ts := newTokenServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	ui, _ := newTestUI()
	auth := NewAuthenticatorWithConfig(ts.oauthConfig(), filepath.Join(t.TempDir(), "token.json"), ui,
		WithListenAddr("127.0.0.1:0"),
		WithURLOpener(func(string) error {
			cancel()
			return nil
		}),
	)

	_, err := auth.TokenSource(ctx)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{"ok", "code=abc&state=s1", ""},
		{"denied", "error=access_denied&state=s1", "authorization denied"},
		{"wrong state", "code=abc&state=other", "state mismatch"},
		{"no code", "state=s1", "no code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			res := parseCallback(r, "s1")
			if tt.wantErr == "" {
				require.NoError(t, res.err)
				assert.Equal(t, "abc", res.code)
				return
			}
			require.Error(t, res.err)
			assert.Contains(t, res.err.Error(), tt.wantErr)
		})
	}
}

func TestAuthenticatorClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer api.Close()

	ts := newTokenServer(t)
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, SaveCredential(path, &Credential{
		AccessToken: "cached", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour),
	}))

	ui, _ := newTestUI()
	client, err := NewAuthenticatorWithConfig(ts.oauthConfig(), path, ui).Client(context.Background())
	require.NoError(t, err)

	resp, err := client.Get(api.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer cached", gotAuth)
}

func TestNewAuthenticatorMissingSecrets(t *testing.T) {
	ui, _ := newTestUI()
	_, err := NewAuthenticator(&Config{ClientSecretsFile: filepath.Join(t.TempDir(), "client_secrets.json")}, ui)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestNewAuthenticatorFromSecretsFile(t *testing.T) {
	dir := t.TempDir()
	secrets := `{"installed":{"client_id":"cid","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`
	secretsPath := filepath.Join(dir, "client_secrets.json")
	require.NoError(t, os.WriteFile(secretsPath, []byte(secrets), 0600))

	ui, _ := newTestUI()
	auth, err := NewAuthenticator(&Config{
		ClientSecretsFile: secretsPath,
		TokenFile:         filepath.Join(dir, "token.json"),
		OAuthPort:         8080,
	}, ui)
	require.NoError(t, err)

	assert.Equal(t, "cid", auth.oauth.ClientID)
	assert.Equal(t, "localhost:8080", auth.listenAddr)
	assert.Contains(t, auth.oauth.Scopes, "https://www.googleapis.com/auth/youtube.upload")
}
