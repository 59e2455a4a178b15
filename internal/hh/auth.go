package hh

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/hh-vacancy-crawler/internal/metrics"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// RefreshAccessToken exchanges the refresh token for a new access token. On
// success the credential store is updated in place, so every later request
// carries the new bearer header, and the token is written through to the
// store's persister. Failures are logged and reported as false.
//
// Concurrent callers share one in-flight refresh.
func (c *Client) RefreshAccessToken(ctx context.Context) bool {
	v, _, _ := c.refresh.Do("refresh", func() (any, error) {
		ok := c.refreshAccessToken(ctx)
		metrics.ObserveTokenRefresh(ok)
		return ok, nil
	})
	ok, _ := v.(bool)
	return ok
}

func (c *Client) refreshAccessToken(ctx context.Context) bool {
	creds := c.creds.Snapshot()
	var tokens tokenResponse

	start := time.Now()
	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": creds.RefreshToken,
			"client_id":     creds.ClientID,
			"client_secret": creds.ClientSecret,
		}).
		Post(c.cfg.OAuthURL)
	if err != nil {
		metrics.ObserveAPIRequest(routeOAuth, 0, time.Since(start))
		c.logger.Error("failed to refresh access token", zap.Error(err))
		return false
	}
	metrics.ObserveAPIRequest(routeOAuth, res.StatusCode(), time.Since(start))
	if !res.IsSuccess() {
		c.logger.Error("failed to refresh access token",
			zap.Int("status", res.StatusCode()),
			zap.String("body", truncate(res.String(), 512)),
		)
		return false
	}
	if err := decode(res.Body(), &tokens); err != nil {
		c.logger.Error("failed to decode token response", zap.Error(err))
		return false
	}
	if tokens.AccessToken == "" {
		c.logger.Error("no new access token found in the response")
		return false
	}

	if err := c.creds.SetAccessToken(ctx, tokens.AccessToken); err != nil {
		// The new token is already live in memory; only the write-through failed.
		c.logger.Warn("access token refreshed but not persisted", zap.Error(err))
		return true
	}
	c.logger.Info("access token refreshed and persisted",
		zap.Duration("expires_in", time.Duration(tokens.ExpiresIn)*time.Second),
	)
	return true
}
