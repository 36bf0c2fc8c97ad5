package googlefit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/redmonkez12/fitness-api/internal/config"
)

const (
	ScopeActivityRead = "https://www.googleapis.com/auth/fitness.activity.read"

	defaultAPIBase     = "https://www.googleapis.com/fitness/v1"
	caloriesDataType   = "com.google.calories.expended"
	aggregationWindow  = 24 * time.Hour
	defaultHTTPTimeout = 10 * time.Second
)

var (
	ErrUpstream     = errors.New("google fit request failed")
	ErrUnauthorized = errors.New("google access token rejected")
)

type dataTypeFilter struct {
	DataTypeName string `json:"dataTypeName"`
}

type aggregateRequest struct {
	AggregateBy  []dataTypeFilter `json:"aggregateBy"`
	BucketByTime struct {
		DurationMillis int64 `json:"durationMillis"`
	} `json:"bucketByTime"`
	StartTimeMillis int64 `json:"startTimeMillis"`
	EndTimeMillis   int64 `json:"endTimeMillis"`
}

type aggregateResponse struct {
	Bucket []struct {
		Dataset []struct {
			Point []struct {
				Value []struct {
					FpVal float64 `json:"fpVal"`
				} `json:"value"`
			} `json:"point"`
		} `json:"dataset"`
	} `json:"bucket"`
}

// Client runs the Google OAuth code flow and reads the Fitness API
type Client struct {
	oauth   *oauth2.Config
	apiBase string
	http    *http.Client
	now     func() time.Time
}

func NewClient(cfg config.GoogleConfig) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{ScopeActivityRead},
			Endpoint:     endpoints.Google,
		},
		apiBase: defaultAPIBase,
		http:    &http.Client{Timeout: defaultHTTPTimeout},
		now:     time.Now,
	}
}

// AuthCodeURL is the consent screen URL carrying state
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.oauth.Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %v", ErrUpstream, err)
	}
	return token, nil
}

// CaloriesBurned sums the calories expended over the last 24 hours
func (c *Client) CaloriesBurned(ctx context.Context, accessToken string) (float64, error) {
	end := c.now()
	start := end.Add(-aggregationWindow)

	var body aggregateRequest
	body.AggregateBy = []dataTypeFilter{{DataTypeName: caloriesDataType}}
	body.BucketByTime.DurationMillis = aggregationWindow.Milliseconds()
	body.StartTimeMillis = start.UnixMilli()
	body.EndTimeMillis = end.UnixMilli()

	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/users/me/dataset:aggregate", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := oauth2.NewClient(c.withHTTPClient(ctx), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return 0, ErrUnauthorized
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var agg aggregateResponse
	if err := json.NewDecoder(resp.Body).Decode(&agg); err != nil {
		return 0, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}

	// first value of the first point, zero when Google has no data for the window
	if len(agg.Bucket) == 0 || len(agg.Bucket[0].Dataset) == 0 ||
		len(agg.Bucket[0].Dataset[0].Point) == 0 || len(agg.Bucket[0].Dataset[0].Point[0].Value) == 0 {
		return 0, nil
	}
	return agg.Bucket[0].Dataset[0].Point[0].Value[0].FpVal, nil
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}
