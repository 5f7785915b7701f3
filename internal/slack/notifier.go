package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"purchase-order-relay-go/internal/config"
	"purchase-order-relay-go/internal/model"
)

// Delivery error taxonomy. A transport failure and an endpoint that
// answered but refused the message are distinct conditions.
var (
	ErrDeliveryUnavailable = errors.New("messaging endpoint unavailable")
	ErrDeliveryRejected    = errors.New("messaging endpoint rejected message")
)

// Message is a rendered notification: the text body plus an optional
// reference link. Built fresh per record, never persisted.
type Message struct {
	Text string
	Link string
}

// Notifier renders order notifications and delivers them to a
// chat.postMessage-style endpoint.
type Notifier struct {
	rest *resty.Client
	cfg  *config.SlackConfig
}

// NewNotifier creates a new notifier
func NewNotifier(cfg *config.SlackConfig) *Notifier {
	rest := resty.New().
		SetAuthToken(cfg.BotToken).
		SetHeader("Content-Type", "application/json; charset=utf-8").
		SetTimeout(cfg.Timeout)

	return &Notifier{rest: rest, cfg: cfg}
}

// HTTPClient exposes the underlying transport for tests.
func (n *Notifier) HTTPClient() *http.Client {
	return n.rest.GetClient()
}

// Render builds the notification for one order. The template is
// deterministic: same fields, same message.
func (n *Notifier) Render(fields model.OrderFields, link string) Message {
	var b strings.Builder
	b.WriteString(n.cfg.Greeting + "\n")
	b.WriteString(fmt.Sprintf("📦 You received a new order request from %s.\n\n", fields.Applicant))
	b.WriteString(fmt.Sprintf("- Product: %s\n", fields.Title))
	b.WriteString(fmt.Sprintf("- Quantity: %s\n", fields.Quantity))
	b.WriteString(fmt.Sprintf("- Expected Price: ￥%s\n", fields.ExpectedPrice))
	if fields.Description != "" {
		b.WriteString(fmt.Sprintf("- Notes: %s\n", fields.Description))
	}

	return Message{Text: b.String(), Link: link}
}

// Send delivers one message. Delivery counts as confirmed only when
// the endpoint's response body reports ok; a 200 with ok=false is a
// rejection, not a success.
func (n *Notifier) Send(ctx context.Context, msg Message) error {
	payload := postMessageRequest{
		Channel: n.cfg.Channel,
		Text:    msg.Text,
		Blocks:  buildBlocks(msg),
	}

	var result postMessageResponse
	resp, err := n.rest.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		Post(n.cfg.APIURL)
	if err != nil {
		return fmt.Errorf("post message: %w: %v", ErrDeliveryUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("post message: %w: status %d", ErrDeliveryRejected, resp.StatusCode())
	}
	if !result.OK {
		return fmt.Errorf("post message: %w: %s", ErrDeliveryRejected, result.Error)
	}

	logrus.Debug("Message delivered")
	return nil
}

type postMessageRequest struct {
	Channel string  `json:"channel"`
	Text    string  `json:"text"`
	Blocks  []block `json:"blocks,omitempty"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type block struct {
	Type     string    `json:"type"`
	Text     *textSpec `json:"text,omitempty"`
	Elements []element `json:"elements,omitempty"`
}

type textSpec struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type element struct {
	Type string    `json:"type"`
	Text *textSpec `json:"text,omitempty"`
	URL  string    `json:"url,omitempty"`
}

// buildBlocks renders the rich form of the message: the text as a
// section plus, when a link is present, a "See Details" button.
func buildBlocks(msg Message) []block {
	blocks := []block{
		{
			Type: "section",
			Text: &textSpec{Type: "mrkdwn", Text: msg.Text},
		},
	}
	if msg.Link != "" {
		blocks = append(blocks, block{
			Type: "actions",
			Elements: []element{
				{
					Type: "button",
					Text: &textSpec{Type: "plain_text", Text: "See Details"},
					URL:  msg.Link,
				},
			},
		})
	}
	return blocks
}
