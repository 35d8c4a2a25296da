package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const apiBaseURL = "https://api.twitter.com/2"

// userFields selects the profile attributes scoring needs.
const userFields = "user.fields=created_at,verified,public_metrics,profile_image_url"

// Profile is a point-in-time snapshot of a user's public X profile
type Profile struct {
	TwitterID      string
	Username       string
	Name           string
	AvatarURL      string
	FollowersCount int
	FriendsCount   int
	StatusesCount  int
	Verified       bool
	CreatedAt      time.Time
}

// ProfileFetcher fetches profile snapshots. Satisfied by *Client; tests
// substitute a stub.
type ProfileFetcher interface {
	FetchByID(ctx context.Context, twitterID string) (*Profile, error)
}

// Client calls the X API v2 with an authorized HTTP client
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client. httpClient should already carry authorization
// (an oauth2 token client or an app bearer-token transport).
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    apiBaseURL,
	}
}

// userResponse mirrors the X API v2 user object. X returns a larger object;
// we only unmarshal the fields we need.
type userResponse struct {
	Data struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		Username        string `json:"username"`
		Verified        bool   `json:"verified"`
		CreatedAt       string `json:"created_at"`
		ProfileImageURL string `json:"profile_image_url"`
		PublicMetrics   struct {
			FollowersCount int `json:"followers_count"`
			FollowingCount int `json:"following_count"`
			TweetCount     int `json:"tweet_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

// FetchMe fetches the authenticated user's own profile
func (c *Client) FetchMe(ctx context.Context) (*Profile, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/users/me?%s", c.baseURL, userFields))
}

// FetchByID fetches a user's profile by their X user id
func (c *Client) FetchByID(ctx context.Context, twitterID string) (*Profile, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/users/%s?%s", c.baseURL, twitterID, userFields))
}

func (c *Client) fetch(ctx context.Context, url string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("twitter: creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter: calling user API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("twitter: user API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed userResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("twitter: decoding user response: %w", err)
	}

	if parsed.Data.ID == "" {
		return nil, fmt.Errorf("twitter: user API returned an empty user")
	}

	createdAt, err := time.Parse(time.RFC3339, parsed.Data.CreatedAt)
	if err != nil {
		// Scoring clamps a zero creation date to zero account age rather
		// than failing the whole refresh.
		createdAt = time.Time{}
	}

	return &Profile{
		TwitterID:      parsed.Data.ID,
		Username:       parsed.Data.Username,
		Name:           parsed.Data.Name,
		AvatarURL:      parsed.Data.ProfileImageURL,
		FollowersCount: parsed.Data.PublicMetrics.FollowersCount,
		FriendsCount:   parsed.Data.PublicMetrics.FollowingCount,
		StatusesCount:  parsed.Data.PublicMetrics.TweetCount,
		Verified:       parsed.Data.Verified,
		CreatedAt:      createdAt,
	}, nil
}
