package credentials

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// Refresher exchanges a credential's refresh token for a new access token,
// updating the credential in place.
type Refresher interface {
	Refresh(ctx context.Context, c *Credential) error
}

// OAuthRefresher refreshes against the credential's token_uri using
// golang.org/x/oauth2. HTTPClient is optional.
type OAuthRefresher struct {
	HTTPClient *http.Client
}

// Refresh implements Refresher.
func (r OAuthRefresher) Refresh(ctx context.Context, c *Credential) error {
	if c.RefreshToken == "" {
		return fmt.Errorf("refresh credential: no refresh token")
	}
	if r.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.HTTPClient)
	}

	cfg := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Scopes:       c.Scopes,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.tokenURI(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	// A token without an access token is never Valid, which forces the exchange.
	tok, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken}).Token()
	if err != nil {
		return fmt.Errorf("refresh credential: %w", err)
	}

	c.Token = tok.AccessToken
	c.Expiry = tok.Expiry
	if tok.RefreshToken != "" {
		c.RefreshToken = tok.RefreshToken
	}
	return nil
}
