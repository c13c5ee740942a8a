package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://maps.googleapis.com/maps/api"
	responseBodyReadLimit int64 = 1024
)

var errAPIKeyRequired = errors.New("google maps api key is required")

// Client wraps the Google Geocoding API used to resolve farmer coordinates
// into a city and province for the public profile.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Geocoding base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the geocoding client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// Place is the normalized reverse-geocoding result.
type Place struct {
	FormattedAddress string
	City             string
	Province         string
	Region           string
}

// ReverseGeocode resolves a latitude/longitude pair into locality data.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (*Place, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "geocoding client not configured")
	}

	query := url.Values{}
	query.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))
	query.Set("key", c.apiKey)
	query.Set("language", "it")

	endpoint := strings.TrimRight(c.baseURL, "/") + "/geocode/json?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build geocode request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"geocode request failed")
	}

	var apiResp struct {
		Status  string `json:"status"`
		Results []struct {
			FormattedAddress  string `json:"formatted_address"`
			AddressComponents []struct {
				LongName  string   `json:"long_name"`
				ShortName string   `json:"short_name"`
				Types     []string `json:"types"`
			} `json:"address_components"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode geocode response")
	}

	if apiResp.Status == "ZERO_RESULTS" || len(apiResp.Results) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no place found for coordinates")
	}
	if apiResp.Status != "OK" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("geocode status %s", apiResp.Status))
	}

	result := apiResp.Results[0]
	place := &Place{FormattedAddress: result.FormattedAddress}
	for _, component := range result.AddressComponents {
		for _, t := range component.Types {
			switch t {
			case "locality":
				place.City = component.LongName
			case "administrative_area_level_2":
				place.Province = component.ShortName
			case "administrative_area_level_1":
				place.Region = component.LongName
			}
		}
	}

	return place, nil
}
