package slack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchase-order-relay-go/internal/config"
	"purchase-order-relay-go/internal/model"
)

const apiURL = "https://slack.test/api/chat.postMessage"

func testNotifier(t *testing.T) *Notifier {
	t.Helper()

	n := NewNotifier(&config.SlackConfig{
		BotToken: "xoxb-test",
		Channel:  "U123",
		APIURL:   apiURL,
		Greeting: "👋 Hi,",
		Timeout:  time.Second,
	})

	httpmock.ActivateNonDefault(n.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	return n
}

func okResponse(req *http.Request) (*http.Response, error) {
	resp := httpmock.NewStringResponse(200, `{"ok": true}`)
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func TestRender(t *testing.T) {
	n := testNotifier(t)

	fields := model.OrderFields{
		Title:         "Widget",
		Description:   "need it by Friday",
		Quantity:      "5",
		ExpectedPrice: "20",
		Applicant:     "Bob",
	}

	msg := n.Render(fields, "https://notion.test/db-view")

	assert.Contains(t, msg.Text, "👋 Hi,")
	assert.Contains(t, msg.Text, "new order request from Bob")
	assert.Contains(t, msg.Text, "- Product: Widget")
	assert.Contains(t, msg.Text, "- Quantity: 5")
	assert.Contains(t, msg.Text, "- Expected Price: ￥20")
	assert.Contains(t, msg.Text, "- Notes: need it by Friday")
	assert.Equal(t, "https://notion.test/db-view", msg.Link)

	// Rendering is deterministic.
	assert.Equal(t, msg, n.Render(fields, "https://notion.test/db-view"))
}

func TestRenderOmitsEmptyNotes(t *testing.T) {
	n := testNotifier(t)

	msg := n.Render(model.OrderFields{
		Title:         "Widget",
		Quantity:      "-",
		ExpectedPrice: "-",
		Applicant:     "-",
	}, "")

	assert.NotContains(t, msg.Text, "Notes:")
	assert.Equal(t, "", msg.Link)
}

func TestSendPayload(t *testing.T) {
	n := testNotifier(t)

	var captured map[string]any
	httpmock.RegisterResponder("POST", apiURL,
		func(req *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
				return nil, err
			}
			return okResponse(req)
		})

	msg := Message{Text: "hello", Link: "https://notion.test/db-view"}
	require.NoError(t, n.Send(context.Background(), msg))

	assert.Equal(t, "U123", captured["channel"])
	assert.Equal(t, "hello", captured["text"])

	blocks := captured["blocks"].([]any)
	require.Len(t, blocks, 2)

	section := blocks[0].(map[string]any)
	assert.Equal(t, "section", section["type"])
	assert.Equal(t, map[string]any{"type": "mrkdwn", "text": "hello"}, section["text"])

	actions := blocks[1].(map[string]any)
	assert.Equal(t, "actions", actions["type"])
	elements := actions["elements"].([]any)
	require.Len(t, elements, 1)
	button := elements[0].(map[string]any)
	assert.Equal(t, "button", button["type"])
	assert.Equal(t, "https://notion.test/db-view", button["url"])
}

func TestSendWithoutLinkHasNoButton(t *testing.T) {
	n := testNotifier(t)

	var captured map[string]any
	httpmock.RegisterResponder("POST", apiURL,
		func(req *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
				return nil, err
			}
			return okResponse(req)
		})

	require.NoError(t, n.Send(context.Background(), Message{Text: "hello"}))

	blocks := captured["blocks"].([]any)
	require.Len(t, blocks, 1)
}

func TestSendPayloadLevelRejection(t *testing.T) {
	n := testNotifier(t)

	// Transport-level success is not delivery: the endpoint said no.
	httpmock.RegisterResponder("POST", apiURL,
		func(req *http.Request) (*http.Response, error) {
			resp := httpmock.NewStringResponse(200, `{"ok": false, "error": "channel_not_found"}`)
			resp.Header.Set("Content-Type", "application/json")
			return resp, nil
		})

	err := n.Send(context.Background(), Message{Text: "hello"})
	assert.ErrorIs(t, err, ErrDeliveryRejected)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestSendStatusRejection(t *testing.T) {
	n := testNotifier(t)

	httpmock.RegisterResponder("POST", apiURL,
		httpmock.NewStringResponder(500, "internal error"))

	err := n.Send(context.Background(), Message{Text: "hello"})
	assert.ErrorIs(t, err, ErrDeliveryRejected)
}

func TestSendTransportFailure(t *testing.T) {
	n := testNotifier(t)

	httpmock.RegisterResponder("POST", apiURL,
		httpmock.NewErrorResponder(errors.New("connection reset")))

	err := n.Send(context.Background(), Message{Text: "hello"})
	assert.ErrorIs(t, err, ErrDeliveryUnavailable)
}
