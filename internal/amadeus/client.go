// internal/amadeus/client.go
package amadeus

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"flight-concierge/internal/common/errors"
	"flight-concierge/internal/common/httpclient"
	"flight-concierge/internal/common/logger"
)

// ErrNoSegments is returned when an offer carries no itinerary segments.
var ErrNoSegments = stderrors.New("flight offer has no segments")

// Client talks to the Amadeus self-service APIs. It fetches an OAuth token
// with the client-credentials flow and caches it until expiry.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *httpclient.Client
	logger     logger.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a new Amadeus API client.
func NewClient(baseURL, apiKey, apiSecret string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: httpclient.NewClient(timeout),
		logger:     log.WithFields(map[string]interface{}{"client": "amadeus"}),
	}
}

// getAccessToken fetches a new access token using the client credentials
// flow. The token is cached until shortly before expiry.
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokenExpiry.After(time.Now()) && c.accessToken != "" {
		return c.accessToken, nil
	}

	tokenURL := c.baseURL + "/v1/security/oauth2/token"

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", c.apiKey)
	data.Set("client_secret", c.apiSecret)

	req, err := http.NewRequest("POST", tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", errors.NewAmadeusAuthError(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return "", errors.NewAmadeusAuthError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", errors.NewAmadeusAuthError(
			fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body)))
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", errors.NewAmadeusAuthError(err)
	}

	c.accessToken = tokenResp.AccessToken
	// Refresh one minute early so in-flight searches never carry a stale token.
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - time.Minute)

	return c.accessToken, nil
}

// SearchFlightOffers runs a flight-offers search and returns the raw offers.
func (c *Client) SearchFlightOffers(ctx context.Context, query SearchQuery) ([]FlightOffer, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	searchURL := c.buildSearchURL(query)

	req, err := http.NewRequest("GET", searchURL, nil)
	if err != nil {
		return nil, errors.NewAmadeusSearchError(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, errors.NewAmadeusTimeoutError()
		}
		return nil, errors.NewAmadeusSearchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Token revoked server-side; drop the cache so the next call refreshes.
		c.mu.Lock()
		c.accessToken = ""
		c.tokenExpiry = time.Time{}
		c.mu.Unlock()
		return nil, errors.NewAmadeusAuthError(fmt.Errorf("search returned 401"))
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.NewAmadeusSearchError(
			fmt.Errorf("search API returned %d: %s", resp.StatusCode, string(body)))
	}

	var apiResponse searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, errors.NewAmadeusSearchError(err)
	}

	c.logger.Info("flight-offers search completed", map[string]interface{}{
		"origin":      query.Origin,
		"destination": query.Destination,
		"date":        query.DepartureDate,
		"offerCount":  len(apiResponse.Data),
	})

	return apiResponse.Data, nil
}

func (c *Client) buildSearchURL(query SearchQuery) string {
	baseURL, _ := url.Parse(c.baseURL + "/v2/shopping/flight-offers")
	params := url.Values{}
	params.Add("originLocationCode", query.Origin)
	params.Add("destinationLocationCode", query.Destination)
	params.Add("departureDate", query.DepartureDate)
	params.Add("adults", "1")
	params.Add("currencyCode", query.Currency)
	if query.NonStop {
		params.Add("nonStop", "true")
	}
	params.Add("max", strconv.Itoa(query.Max))
	baseURL.RawQuery = params.Encode()
	return baseURL.String()
}
