// Package google talks to Google on behalf of users: the OAuth code flow,
// token persistence in the Drive app-data folder, and Calendar events.
package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/drive/v3"
)

// ErrNoToken means the user never connected their Google account.
var ErrNoToken = errors.New("google account not connected")

// ReadCredentials returns inline JSON when set, otherwise the file contents.
func ReadCredentials(inline, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("no Google credentials configured")
	}
}

// CalendarConfig builds the OAuth config users consent to.
func CalendarConfig(clientJSON []byte, redirectURL string) (*oauth2.Config, error) {
	cfg, err := google.ConfigFromJSON(clientJSON, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth client config: %w", err)
	}
	cfg.RedirectURL = redirectURL
	return cfg, nil
}

// DriveConfig builds the OAuth config for the server-owned app-data folder.
func DriveConfig(clientJSON []byte, redirectURL string) (*oauth2.Config, error) {
	cfg, err := google.ConfigFromJSON(clientJSON, drive.DriveAppdataScope)
	if err != nil {
		return nil, fmt.Errorf("oauth client config: %w", err)
	}
	cfg.RedirectURL = redirectURL
	return cfg, nil
}

// NewState returns a random hex value for the OAuth state parameter.
func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// CodeFlow is the part of *oauth2.Config used by the authorization code flow.
type CodeFlow interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// ConsentURL asks for offline access and forces the consent screen so a
// refresh token is always returned.
func ConsentURL(cfg CodeFlow, state string) string {
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// StoredToken is the persisted token blob.
type StoredToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiryDate   int64  `json:"expiry_date,omitempty"`
	Scope        string `json:"scope,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

// FromOAuth converts a token; expiry is kept as epoch milliseconds.
func FromOAuth(tok *oauth2.Token) StoredToken {
	st := StoredToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		st.ExpiryDate = tok.Expiry.UnixMilli()
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		st.Scope = scope
	}
	return st
}

func (s StoredToken) OAuth() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
	}
	if s.ExpiryDate > 0 {
		tok.Expiry = time.UnixMilli(s.ExpiryDate)
	}
	if s.Scope != "" {
		tok = tok.WithExtra(map[string]any{"scope": s.Scope})
	}
	return tok
}

// LoadTokenJSON decodes a token saved by oauth-init.
func LoadTokenJSON(b []byte) (*oauth2.Token, error) {
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, errors.New("token has neither access nor refresh token")
	}
	return &tok, nil
}

// TokenFileName is the app-data file holding one user's calendar token.
func TokenFileName(userID string) string {
	return "google_calendar_tokens_" + userID + ".json"
}
