package twitter

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// X (Twitter) OAuth 2.0 endpoints.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://twitter.com/i/oauth2/authorize",
	TokenURL: "https://api.twitter.com/2/oauth2/token",
}

// OAuthProvider wraps golang.org/x/oauth2 for the X authorization-code flow.
// The code-for-token exchange happens server-to-server with the client
// secret; the access token never reaches the browser.
type OAuthProvider struct {
	config *oauth2.Config
}

// NewOAuthProvider creates an OAuthProvider with the given credentials.
// callbackURL must exactly match the redirect URI registered in the X
// developer portal.
func NewOAuthProvider(clientID, clientSecret, callbackURL string) *OAuthProvider {
	return &OAuthProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"users.read", "tweet.read", "offline.access"},
			Endpoint:     Endpoint,
		},
	}
}

// AuthURL returns the URL to redirect the user to for authorization. The
// state parameter must be verified on callback to prevent CSRF.
func (p *OAuthProvider) AuthURL(state string) string {
	// X requires PKCE; the plain method keeps the verifier server-side.
	return p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", "challenge"),
		oauth2.SetAuthURLParam("code_challenge_method", "plain"),
	)
}

// Exchange trades the authorization code for the authenticated user's
// profile: code -> access token -> GET /2/users/me.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", "challenge"),
	)
	if err != nil {
		return nil, fmt.Errorf("twitter: exchanging OAuth code: %w", err)
	}

	client := NewClient(p.config.Client(ctx, token))
	profile, err := client.FetchMe(ctx)
	if err != nil {
		return nil, err
	}

	return profile, nil
}
