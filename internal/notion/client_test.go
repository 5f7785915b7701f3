package notion

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

func testClient(t *testing.T) *Client {
	t.Helper()

	cfg := &config.NotionConfig{
		Token:            "secret",
		DatabaseID:       "db1",
		BaseURL:          "https://notion.test",
		Version:          "2022-06-28",
		TargetStatus:     "Requesting",
		PageSize:         100,
		FilterServerSide: true,
		Timeout:          time.Second,
		Properties:       testProps,
	}
	c := NewClient(cfg)

	httpmock.ActivateNonDefault(c.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	return c
}

const queryURL = "https://notion.test/v1/databases/db1/query"

// jsonResponse builds a response resty will actually unmarshal; httpmock's
// plain string responses carry no Content-Type.
func jsonResponse(status int, body string) *http.Response {
	resp := httpmock.NewStringResponse(status, body)
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

func jsonResponder(status int, body string) httpmock.Responder {
	return func(*http.Request) (*http.Response, error) {
		return jsonResponse(status, body), nil
	}
}

func TestQueryFollowsPagination(t *testing.T) {
	c := testClient(t)

	pageOne := `{
		"results": [{"id": "a", "last_edited_time": "2024-05-01T10:00:00Z", "properties": {
			"Product Name": {"type": "title", "title": [{"plain_text": "Widget"}]}
		}}],
		"has_more": true,
		"next_cursor": "cursor-2"
	}`
	pageTwo := `{
		"results": [{"id": "b", "last_edited_time": "2024-05-02T10:00:00Z", "properties": {}}],
		"has_more": false,
		"next_cursor": null
	}`

	var cursors []string
	httpmock.RegisterResponder("POST", queryURL,
		func(req *http.Request) (*http.Response, error) {
			var body map[string]any
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				return nil, err
			}
			cursor, _ := body["start_cursor"].(string)
			cursors = append(cursors, cursor)
			if cursor == "" {
				return jsonResponse(200, pageOne), nil
			}
			return jsonResponse(200, pageTwo), nil
		})

	records, err := c.Query(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
	assert.Equal(t, []string{"", "cursor-2"}, cursors)

	// Properties survive decoding into the tagged union.
	prop := records[0].Property("Product Name")
	assert.Equal(t, model.PropertyTitle, prop.Type)
	require.Len(t, prop.Title, 1)
	assert.Equal(t, "Widget", prop.Title[0].PlainText)
}

func TestQueryTolerantOfZeroResults(t *testing.T) {
	c := testClient(t)

	httpmock.RegisterResponder("POST", queryURL,
		jsonResponder(200, `{"results": [], "has_more": false, "next_cursor": null}`))

	records, err := c.Query(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestQuerySendsCompoundPredicate(t *testing.T) {
	c := testClient(t)

	var captured map[string]any
	httpmock.RegisterResponder("POST", queryURL,
		func(req *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
				return nil, err
			}
			return jsonResponse(200, `{"results": [], "has_more": false, "next_cursor": null}`), nil
		})

	status := "Requesting"
	notified := false
	_, err := c.Query(context.Background(), &Filter{Status: &status, Notified: &notified})
	require.NoError(t, err)

	filter, ok := captured["filter"].(map[string]any)
	require.True(t, ok, "query body should carry a filter")
	conditions, ok := filter["and"].([]any)
	require.True(t, ok, "two conditions should be joined with and")
	require.Len(t, conditions, 2)

	first := conditions[0].(map[string]any)
	assert.Equal(t, "Status", first["property"])
	assert.Equal(t, map[string]any{"equals": "Requesting"}, first["status"])

	second := conditions[1].(map[string]any)
	assert.Equal(t, "Notified", second["property"])
	assert.Equal(t, map[string]any{"equals": false}, second["checkbox"])

	// Sort order and page size ride along on every request.
	sorts := captured["sorts"].([]any)
	require.Len(t, sorts, 1)
	assert.Equal(t, map[string]any{"timestamp": "last_edited_time", "direction": "ascending"}, sorts[0])
	assert.Equal(t, float64(100), captured["page_size"])
}

func TestQueryOmitsFilterWhenNil(t *testing.T) {
	c := testClient(t)

	var captured map[string]any
	httpmock.RegisterResponder("POST", queryURL,
		func(req *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
				return nil, err
			}
			return jsonResponse(200, `{"results": [], "has_more": false, "next_cursor": null}`), nil
		})

	_, err := c.Query(context.Background(), nil)
	require.NoError(t, err)

	_, present := captured["filter"]
	assert.False(t, present, "nil filter must not appear in the request body")
}

func TestQueryErrorTaxonomy(t *testing.T) {
	c := testClient(t)

	httpmock.RegisterResponder("POST", queryURL,
		httpmock.NewErrorResponder(errors.New("connection refused")))
	_, err := c.Query(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	httpmock.RegisterResponder("POST", queryURL,
		jsonResponder(400, `{"code": "validation_error", "message": "bad filter"}`))
	_, err = c.Query(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStoreRejected)
	assert.Contains(t, err.Error(), "validation_error")
	assert.Contains(t, err.Error(), "bad filter")
}

func TestSetCheckbox(t *testing.T) {
	c := testClient(t)

	var captured map[string]any
	httpmock.RegisterResponder("PATCH", "https://notion.test/v1/pages/page-1",
		func(req *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
				return nil, err
			}
			return jsonResponse(200, `{"id": "page-1"}`), nil
		})

	err := c.SetCheckbox(context.Background(), "page-1", "Notified", true)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"properties": map[string]any{
			"Notified": map[string]any{"checkbox": true},
		},
	}, captured)
}

func TestSetCheckboxErrorTaxonomy(t *testing.T) {
	c := testClient(t)

	httpmock.RegisterResponder("PATCH", "https://notion.test/v1/pages/page-1",
		jsonResponder(404, `{"code": "object_not_found", "message": "page missing"}`))
	err := c.SetCheckbox(context.Background(), "page-1", "Notified", true)
	assert.ErrorIs(t, err, ErrStoreRejected)

	httpmock.RegisterResponder("PATCH", "https://notion.test/v1/pages/page-1",
		httpmock.NewErrorResponder(errors.New("timeout")))
	err = c.SetCheckbox(context.Background(), "page-1", "Notified", true)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestUnknownPropertyTypeDecodesAsAbsent(t *testing.T) {
	c := testClient(t)

	httpmock.RegisterResponder("POST", queryURL,
		jsonResponder(200, `{
			"results": [{"id": "a", "last_edited_time": "2024-05-01T10:00:00Z", "properties": {
				"Something": {"type": "formula"}
			}}],
			"has_more": false,
			"next_cursor": null
		}`))

	records, err := c.Query(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.PropertyAbsent, records[0].Property("Something").Type)
}
