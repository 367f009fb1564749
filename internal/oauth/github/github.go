// Package github implements the OAuth 2.0 dance with GitHub. GitHub has no
// ID tokens, so user information comes from a separate API call after the
// code exchange.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAuthBase = "https://github.com"
	defaultAPIBase  = "https://api.github.com"
)

// UpstreamError carries GitHub's own error code through to the caller so it
// can be surfaced verbatim (e.g. bad_verification_code, access_denied).
type UpstreamError struct {
	Code        string
	Description string
}

func (e *UpstreamError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("github: %s: %s", e.Code, e.Description)
	}
	return "github: " + e.Code
}

// Client is the GitHub OAuth 2.0 client.
type Client struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// AuthBase and APIBase override the GitHub hosts, used in tests.
	AuthBase string
	APIBase  string

	http *http.Client
}

// New creates a GitHub OAuth client with the default scopes for reading the
// profile and email addresses.
func New(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"read:user", "user:email"},
		AuthBase:     defaultAuthBase,
		APIBase:      defaultAPIBase,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthURL builds the authorization URL carrying the signed state.
func (c *Client) AuthURL(state string) string {
	u, _ := url.Parse(c.AuthBase + "/login/oauth/authorize")
	q := u.Query()
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", c.RedirectURL)
	q.Set("scope", strings.Join(c.Scopes, " "))
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String()
}

// Token is GitHub's token endpoint response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	Error       string `json:"error,omitempty"`
	ErrorDesc   string `json:"error_description,omitempty"`
}

// ExchangeCode trades an authorization code for an access token. GitHub
// reports failures with 200 + an error body, so the body is checked either
// way.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	form := url.Values{}
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", c.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.AuthBase+"/login/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tok Token
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	if tok.Error != "" {
		return nil, &UpstreamError{Code: tok.Error, Description: tok.ErrorDesc}
	}
	if tok.AccessToken == "" {
		return nil, &UpstreamError{Code: "empty_access_token"}
	}

	return &tok, nil
}

// Profile is the subset of the GitHub user we keep on a connection.
type Profile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

type emailEntry struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// FetchProfile fetches the authenticated user. Users with private emails
// come back with an empty email field; that case is resolved through the
// emails API, preferring the primary verified address.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var p Profile
	if err := c.apiGet(ctx, accessToken, "/user", &p); err != nil {
		return nil, err
	}

	if p.Email == "" {
		var emails []emailEntry
		if err := c.apiGet(ctx, accessToken, "/user/emails", &emails); err != nil {
			return nil, fmt.Errorf("resolve email: %w", err)
		}
		p.Email = pickEmail(emails)
	}

	return &p, nil
}

func (c *Client) apiGet(ctx context.Context, accessToken, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func pickEmail(emails []emailEntry) string {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email
		}
	}
	if len(emails) > 0 {
		return emails[0].Email
	}
	return ""
}
