// Package telegram delivers progress messages through the Telegram Bot API.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// ErrRejected is returned when the Bot API answers with ok=false.
var ErrRejected = errors.New("telegram: message rejected")

// Config configures the Notifier.
type Config struct {
	APIURL  string
	Token   string
	ChatID  int64
	Timeout time.Duration
	// HTTPClient overrides the transport; nil uses a fresh http.Client.
	HTTPClient *http.Client
}

// Notifier posts plain-text messages to a single chat.
type Notifier struct {
	http   *resty.Client
	token  string
	chatID string
	logger *zap.Logger
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

// New constructs a Notifier.
func New(cfg Config, logger *zap.Logger) (*Notifier, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram: bot token is required")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram: chat id is required")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
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
	rc.SetBaseURL(strings.TrimRight(cfg.APIURL, "/"))
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	return &Notifier{
		http:   rc,
		token:  cfg.Token,
		chatID: strconv.FormatInt(cfg.ChatID, 10),
		logger: logger,
	}, nil
}

// Notify sends text to the configured chat.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	res, err := n.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": n.chatID,
			"text":    text,
		}).
		Post("/bot" + n.token + "/sendMessage")
	if err != nil {
		// The request URL embeds the token; keep it out of the error chain.
		return fmt.Errorf("telegram: send message: %w", redact(err, n.token))
	}

	var body sendMessageResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return fmt.Errorf("telegram: decode response (status %d): %w", res.StatusCode(), err)
	}
	if !body.OK {
		return fmt.Errorf("%w: %d %s", ErrRejected, body.ErrorCode, body.Description)
	}
	n.logger.Debug("message sent", zap.Int("length", len(text)))
	return nil
}

func redact(err error, token string) error {
	msg := err.Error()
	if token == "" || !strings.Contains(msg, token) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, token, "<redacted>"))
}
