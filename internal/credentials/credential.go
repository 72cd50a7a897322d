// Package credentials keeps the channel's OAuth credential in a durable blob
// and hands out a valid copy, refreshing and writing it back when it expires.
package credentials

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// DefaultTokenURI is Google's OAuth 2.0 token endpoint.
const DefaultTokenURI = "https://oauth2.googleapis.com/token"

// YouTubeScope is the scope the stored credential must carry.
const YouTubeScope = "https://www.googleapis.com/auth/youtube"

// expirySkew treats a token as expired slightly early so it does not lapse mid-call.
const expirySkew = 10 * time.Second

// Credential is the serialized "authorized user" token bundle.
type Credential struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenURI     string    `json:"token_uri,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

// Decode parses a stored credential blob.
func Decode(data []byte) (*Credential, error) {
	var c Credential
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	return &c, nil
}

// Encode serializes c in the layout Decode reads.
func (c *Credential) Encode() ([]byte, error) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode credential: %w", err)
	}
	return b, nil
}

// ExpiredAt reports whether the access token has lapsed at now.
// A zero expiry never expires.
func (c *Credential) ExpiredAt(now time.Time) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return !now.Add(expirySkew).Before(c.Expiry)
}

// ValidAt reports whether c carries a usable access token at now.
func (c *Credential) ValidAt(now time.Time) bool {
	return c != nil && c.Token != "" && !c.ExpiredAt(now)
}

// Expired is ExpiredAt(time.Now()).
func (c *Credential) Expired() bool { return c.ExpiredAt(time.Now()) }

// Valid is ValidAt(time.Now()).
func (c *Credential) Valid() bool { return c.ValidAt(time.Now()) }

func (c *Credential) tokenURI() string {
	if c.TokenURI != "" {
		return c.TokenURI
	}
	return DefaultTokenURI
}

// OAuth2Token converts c into the token type the Google client libraries consume.
func (c *Credential) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.Token,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

func (c *Credential) clone() *Credential {
	cp := *c
	cp.Scopes = append([]string(nil), c.Scopes...)
	return &cp
}
