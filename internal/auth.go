package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

// Credential is the persisted OAuth token set
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	TokenURI     string    `json:"token_uri,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
}

// Token converts the credential into an oauth2 token
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
	}
}

// newCredential records tok together with the client it was issued for
func newCredential(tok *oauth2.Token, config *oauth2.Config) *Credential {
	return &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		ClientID:     config.ClientID,
		TokenURI:     config.Endpoint.TokenURL,
		Scopes:       config.Scopes,
	}
}

// LoadCredential reads a credential file
func LoadCredential(path string) (*Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("parsing credential file: %w", err)
	}
	if cred.AccessToken == "" && cred.RefreshToken == "" {
		return nil, fmt.Errorf("credential file %s holds no token", path)
	}
	return &cred, nil
}

// SaveCredential writes the credential file, readable only by the owner
func SaveCredential(path string, cred *Credential) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credential: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}
	return nil
}

// Authenticator obtains an authorized token source: cached, refreshed or interactive
type Authenticator struct {
	oauth      *oauth2.Config
	tokenFile  string
	listenAddr string
	openURL    func(authURL string) error
	ui         UIManager
}

// AuthOption customizes Authenticator creation
type AuthOption func(*Authenticator)

// WithListenAddr sets the callback listener address (host:port)
func WithListenAddr(addr string) AuthOption {
	return func(a *Authenticator) {
		a.listenAddr = addr
	}
}

// WithURLOpener replaces how the authorization URL is shown to the user
func WithURLOpener(open func(authURL string) error) AuthOption {
	return func(a *Authenticator) {
		a.openURL = open
	}
}

// NewAuthenticator reads the client secrets file configured in config
func NewAuthenticator(config *Config, ui UIManager, options ...AuthOption) (*Authenticator, error) {
	secrets, err := os.ReadFile(config.ClientSecretsFile)
	if err != nil {
		return nil, Categorize(ErrAuthentication, fmt.Errorf("reading client secrets file: %w", err))
	}

	oauthConfig, err := google.ConfigFromJSON(secrets, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, Categorize(ErrAuthentication, fmt.Errorf("parsing client secrets file: %w", err))
	}

	options = append([]AuthOption{WithListenAddr(fmt.Sprintf("localhost:%d", config.OAuthPort))}, options...)
	return NewAuthenticatorWithConfig(oauthConfig, config.TokenFile, ui, options...), nil
}

// NewAuthenticatorWithConfig creates an authenticator for an explicit OAuth client
func NewAuthenticatorWithConfig(oauthConfig *oauth2.Config, tokenFile string, ui UIManager, options ...AuthOption) *Authenticator {
	a := &Authenticator{
		oauth:      oauthConfig,
		tokenFile:  tokenFile,
		listenAddr: "localhost:8080",
		ui:         ui,
	}
	a.openURL = func(authURL string) error {
		a.ui.Printf("Open the following link in your browser to authorize uploads:\n\n%s\n\n", authURL)
		return nil
	}

	for _, option := range options {
		option(a)
	}

	return a
}

// Client returns an HTTP client authorized for uploads
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	ts, err := a.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

// TokenSource loads the cached credential, refreshes it when expired, or runs the
// interactive flow when it is absent or unusable. The credential file is rewritten
// whenever a new token is issued.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	var tok *oauth2.Token
	cred, err := LoadCredential(a.tokenFile)
	if err == nil {
		tok = cred.Token()
	} else if !errors.Is(err, os.ErrNotExist) {
		a.ui.Printf("Warning: ignoring credential file: %v\n", err)
	}

	switch {
	case tok != nil && tok.Valid():
		a.ui.Verbose("Using cached credential from %s\n", a.tokenFile)
	case tok != nil && tok.RefreshToken != "":
		a.ui.Verbose("Refreshing expired credential\n")
		refreshed, err := a.oauth.TokenSource(ctx, tok).Token()
		if err != nil {
			return nil, Categorize(ErrAuthentication, fmt.Errorf("refreshing token: %w", err))
		}
		tok = refreshed
		if err := a.save(tok); err != nil {
			return nil, err
		}
	default:
		tok, err = a.authorizeInteractive(ctx)
		if err != nil {
			return nil, err
		}
		if err := a.save(tok); err != nil {
			return nil, err
		}
	}

	return &persistingTokenSource{
		base: oauth2.ReuseTokenSource(tok, a.oauth.TokenSource(ctx, tok)),
		last: tok.AccessToken,
		save: a.save,
	}, nil
}

func (a *Authenticator) save(tok *oauth2.Token) error {
	if err := SaveCredential(a.tokenFile, newCredential(tok, a.oauth)); err != nil {
		return Categorize(ErrAuthentication, err)
	}
	a.ui.Verbose("Saved credential to %s\n", a.tokenFile)
	return nil
}

// callbackResult is what the loopback handler received from the browser redirect
type callbackResult struct {
	code string
	err  error
}

// authorizeInteractive runs the installed-app flow with a loopback redirect listener
func (a *Authenticator) authorizeInteractive(ctx context.Context) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", a.listenAddr)
	if err != nil {
		return nil, Categorize(ErrAuthentication, fmt.Errorf("starting callback listener: %w", err))
	}

	port := ln.Addr().(*net.TCPAddr).Port
	config := *a.oauth
	config.RedirectURL = fmt.Sprintf("http://localhost:%d/", port)

	state := uuid.NewString()
	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		res := parseCallback(r, state)
		if res.err != nil {
			http.Error(w, "Authorization failed: "+res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorization complete. You can close this window.")
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			results <- callbackResult{err: err}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if err := a.openURL(authURL); err != nil {
		return nil, Categorize(ErrAuthentication, fmt.Errorf("opening authorization URL: %w", err))
	}

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, Categorize(ErrAuthentication, ctx.Err())
	}
	if res.err != nil {
		return nil, Categorize(ErrAuthentication, res.err)
	}

	tok, err := config.Exchange(ctx, res.code)
	if err != nil {
		return nil, Categorize(ErrAuthentication, fmt.Errorf("exchanging authorization code: %w", err))
	}
	return tok, nil
}

// parseCallback validates the redirect query
func parseCallback(r *http.Request, state string) callbackResult {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		return callbackResult{err: fmt.Errorf("authorization denied: %s", e)}
	}
	if q.Get("state") != state {
		return callbackResult{err: fmt.Errorf("state mismatch in authorization callback")}
	}
	code := q.Get("code")
	if code == "" {
		return callbackResult{err: fmt.Errorf("authorization callback carried no code")}
	}
	return callbackResult{code: code}
}

// persistingTokenSource saves every newly issued token to the credential file
type persistingTokenSource struct {
	mu   sync.Mutex
	base oauth2.TokenSource
	last string
	save func(*oauth2.Token) error
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, Categorize(ErrAuthentication, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		if err := p.save(tok); err != nil {
			return nil, err
		}
	}
	return tok, nil
}
