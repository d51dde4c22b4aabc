package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	githubName   = "github"
	githubAPIURL = "https://api.github.com"
)

// GitHubConfig configures the GitHub provider. Endpoint, APIURL and HTTPClient
// default to github.com when left empty.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	Endpoint     oauth2.Endpoint
	APIURL       string
	HTTPClient   *http.Client
}

type GitHub struct {
	oauth      *oauth2.Config
	apiURL     string
	httpClient *http.Client
}

func NewGitHub(cfg GitHubConfig) (*GitHub, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("github oauth config missing client id or secret")
	}
	if cfg.Endpoint.AuthURL == "" {
		cfg.Endpoint = github.Endpoint
	}
	if cfg.APIURL == "" {
		cfg.APIURL = githubAPIURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &GitHub{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     cfg.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		httpClient: cfg.HTTPClient,
	}, nil
}

func (p *GitHub) Name() string { return githubName }

func (p *GitHub) AuthCodeURL(state, verifier, redirectURL string) string {
	return p.oauth.AuthCodeURL(
		state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("redirect_uri", redirectURL),
	)
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (p *GitHub) ExchangeCode(ctx context.Context, code, verifier, redirectURL string) (*Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.oauth.Exchange(ctx, code,
		oauth2.VerifierOption(verifier),
		oauth2.SetAuthURLParam("redirect_uri", redirectURL),
	)
	if err != nil {
		return nil, fmt.Errorf("github token exchange failed: %w", err)
	}
	client := p.oauth.Client(ctx, tok)

	var u githubUser
	if err := p.getJSON(ctx, client, "/user", &u); err != nil {
		return nil, err
	}
	if u.ID == 0 {
		return nil, errors.New("github user response missing id")
	}

	id := &Identity{
		Provider:          githubName,
		ProviderAccountID: strconv.FormatInt(u.ID, 10),
		Email:             u.Email,
		Name:              u.Name,
		Image:             u.AvatarURL,
	}
	if id.Name == "" {
		id.Name = u.Login
	}

	// the profile email carries no verification flag; /user/emails does
	var emails []githubEmail
	if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		return nil, err
	}
	for _, e := range emails {
		if id.Email == "" && e.Primary && e.Verified {
			id.Email = e.Email
		}
		if e.Email != "" && strings.EqualFold(e.Email, id.Email) {
			id.EmailVerified = e.Verified
			break
		}
	}
	if id.Email == "" {
		return nil, errors.New("github account has no verified primary email")
	}
	return id, nil
}

func (p *GitHub) getJSON(ctx context.Context, client *http.Client, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "lumen-auth")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github %s returned %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("github %s: decode: %w", path, err)
	}
	return nil
}
