// Package hh implements the client for the hh.ru listings API: authenticated
// GETs with a single refresh-and-retry on 401, and the enumeration calls the
// sweep is built from (countries, areas, professional roles, vacancy pages).
package hh

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/JakeFAU/hh-vacancy-crawler/internal/credentials"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/metrics"
)

// MaxPerPage is the largest page size the vacancy search accepts.
const MaxPerPage = 100

// Metric route labels.
const (
	routeCountries = "countries"
	routeCountry   = "country"
	routeRoles     = "professional_roles"
	routeVacancies = "vacancies"
	routeOAuth     = "oauth"
)

var (
	// ErrUnauthorized is returned when a request is rejected with 401 and
	// the token could not be refreshed.
	ErrUnauthorized = errors.New("hh: unauthorized and token refresh failed")
	// ErrCountryNotFound is returned when the configured country is absent
	// from the upstream country list.
	ErrCountryNotFound = errors.New("hh: country not found")
	// ErrMalformedResponse is returned when a response body cannot be decoded.
	ErrMalformedResponse = errors.New("hh: malformed response")
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Route string
	Code  int
	Body  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hh: %s returned %d: %s", e.Route, e.Code, e.Body)
}

// Config controls Client behavior.
type Config struct {
	BaseURL   string
	OAuthURL  string
	Country   string
	PerPage   int
	UserAgent string
	Timeout   time.Duration
	// HTTPClient overrides the transport; nil uses a fresh http.Client.
	HTTPClient *http.Client
}

// Client talks to the upstream listings API. It is safe for concurrent use;
// token refreshes are collapsed so only one is in flight at a time.
type Client struct {
	http    *resty.Client
	creds   *credentials.Store
	cfg     Config
	refresh singleflight.Group
	logger  *zap.Logger
}

// New constructs a Client.
func New(cfg Config, creds *credentials.Store, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("hh: base url is required")
	}
	if creds == nil {
		return nil, errors.New("hh: credential store is required")
	}
	if cfg.PerPage <= 0 || cfg.PerPage > MaxPerPage {
		cfg.PerPage = MaxPerPage
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var rc *resty.Client
	if cfg.HTTPClient != nil {
		rc = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(cfg.BaseURL)
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		rc.SetHeader("User-Agent", cfg.UserAgent)
		rc.SetHeader("HH-User-Agent", cfg.UserAgent)
	}
	rc.SetHeader("Accept", "application/json")

	return &Client{
		http:   rc,
		creds:  creds,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// get performs an authenticated GET and returns the raw body. A 401 triggers
// exactly one token refresh and exactly one retry; a failed refresh ends the
// call with ErrUnauthorized.
func (c *Client) get(ctx context.Context, route, endpoint string, params url.Values) ([]byte, error) {
	res, err := c.send(ctx, route, endpoint, params)
	if err != nil {
		c.logger.Error("request failed", zap.String("route", route), zap.String("url", endpoint), zap.Error(err))
		return nil, err
	}

	if res.StatusCode() == http.StatusUnauthorized {
		c.logger.Info("access token rejected; refreshing", zap.String("route", route))
		if !c.RefreshAccessToken(ctx) {
			return nil, ErrUnauthorized
		}
		res, err = c.send(ctx, route, endpoint, params)
		if err != nil {
			c.logger.Error("retry failed", zap.String("route", route), zap.String("url", endpoint), zap.Error(err))
			return nil, err
		}
	}

	if !res.IsSuccess() {
		statusErr := &StatusError{Route: route, Code: res.StatusCode(), Body: truncate(res.String(), 512)}
		c.logger.Error("request failed",
			zap.String("route", route),
			zap.String("url", endpoint),
			zap.Int("status", res.StatusCode()),
			zap.Error(statusErr),
		)
		return nil, statusErr
	}
	return res.Body(), nil
}

func (c *Client) send(ctx context.Context, route, endpoint string, params url.Values) (*resty.Response, error) {
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.creds.AccessToken())
	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}

	start := time.Now()
	res, err := req.Get(endpoint)
	if err != nil {
		metrics.ObserveAPIRequest(route, 0, time.Since(start))
		return nil, fmt.Errorf("get %s: %w", route, err)
	}
	metrics.ObserveAPIRequest(route, res.StatusCode(), time.Since(start))
	return res, nil
}

// decode unmarshals body into out, keeping numbers as json.Number so listing
// ids and other numeric fields survive untouched.
func decode(body []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
