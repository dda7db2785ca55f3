// Package slack adapts the Slack Web API to domain.PlatformClient.
package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	api "github.com/slack-go/slack"

	"github.com/aretw0/onboard/pkg/domain"
)

// Client sends tutorial messages through chat.postMessage and chat.update.
type Client struct {
	api *api.Client
}

var _ domain.PlatformClient = (*Client)(nil)

// Option configures the Client.
type Option func(*config)

type config struct {
	apiURL     string
	httpClient *http.Client
	debug      bool
}

// WithAPIURL points the client at another API root (tests, proxies).
func WithAPIURL(u string) Option {
	return func(c *config) {
		c.apiURL = u
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// WithDebug enables slack-go request logging.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.debug = debug
	}
}

// New creates a Client authenticated with a bot token.
func New(token string, opts ...Option) *Client {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	apiOpts := []api.Option{api.OptionDebug(cfg.debug)}
	if cfg.apiURL != "" {
		u := cfg.apiURL
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		apiOpts = append(apiOpts, api.OptionAPIURL(u))
	}
	if cfg.httpClient != nil {
		apiOpts = append(apiOpts, api.OptionHTTPClient(cfg.httpClient))
	}
	return &Client{api: api.New(token, apiOpts...)}
}

// PostMessage creates msg and returns its timestamp.
func (c *Client) PostMessage(ctx context.Context, msg domain.OutboundMessage) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, msg.Channel, options(msg)...)
	if err != nil {
		return "", fmt.Errorf("chat.postMessage: %w", err)
	}
	return ts, nil
}

// UpdateMessage replaces the message at msg.Channel and msg.TS.
func (c *Client) UpdateMessage(ctx context.Context, msg domain.OutboundMessage) error {
	if _, _, _, err := c.api.UpdateMessageContext(ctx, msg.Channel, msg.TS, options(msg)...); err != nil {
		return fmt.Errorf("chat.update: %w", err)
	}
	return nil
}

// BotUserID resolves the user identity behind the token via auth.test.
func (c *Client) BotUserID(ctx context.Context) (string, error) {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return "", fmt.Errorf("auth.test: %w", err)
	}
	return resp.UserID, nil
}

func options(msg domain.OutboundMessage) []api.MsgOption {
	atts := make([]api.Attachment, len(msg.Attachments))
	for i, a := range msg.Attachments {
		atts[i] = api.Attachment{Text: a.Text, Color: a.Color}
	}
	return []api.MsgOption{
		api.MsgOptionAsUser(msg.AsUser),
		api.MsgOptionText(msg.Text, false),
		api.MsgOptionAttachments(atts...),
	}
}
