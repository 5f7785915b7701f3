package notion

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"purchase-order-relay-go/internal/config"
	"purchase-order-relay-go/internal/model"
)

// Filter is a conjunction of equality conditions pushed into the query
// request. Nil fields are omitted from the predicate.
type Filter struct {
	Status   *string
	Notified *bool
}

// Client provides paginated read access to the order database and a
// single-property write used to latch the notified checkbox.
type Client struct {
	rest *resty.Client
	cfg  *config.NotionConfig
}

// NewClient creates a new record store client
func NewClient(cfg *config.NotionConfig) *Client {
	rest := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.Token).
		SetHeader("Notion-Version", cfg.Version).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{rest: rest, cfg: cfg}
}

// HTTPClient exposes the underlying transport for tests.
func (c *Client) HTTPClient() *http.Client {
	return c.rest.GetClient()
}

// SupportsServerFilter reports whether compound predicates may be
// pushed into the query request. When disabled the client scans the
// whole database and the caller filters locally.
func (c *Client) SupportsServerFilter() bool {
	return c.cfg.FilterServerSide
}

// Query fetches all records matching the filter, following the
// server's continuation cursor until it reports no further pages.
// Results arrive in ascending last-edited order.
func (c *Client) Query(ctx context.Context, filter *Filter) ([]model.Record, error) {
	body := queryRequest{
		Sorts:    []sortObject{{Timestamp: "last_edited_time", Direction: "ascending"}},
		PageSize: c.cfg.PageSize,
		Filter:   c.filterPayload(filter),
	}

	var records []model.Record
	for page := 1; ; page++ {
		var result queryResponse
		var apiErr errorResponse

		resp, err := c.rest.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&result).
			SetError(&apiErr).
			Post("/v1/databases/" + c.cfg.DatabaseID + "/query")
		if err != nil {
			return nil, fmt.Errorf("query database (page %d): %w: %v", page, ErrStoreUnavailable, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("query database (page %d): %w: status %d: %s %s",
				page, ErrStoreRejected, resp.StatusCode(), apiErr.Code, apiErr.Message)
		}

		for _, p := range result.Results {
			records = append(records, p.toRecord())
		}

		logrus.Debugf("Fetched page %d with %d records (has_more=%v)", page, len(result.Results), result.HasMore)

		if !result.HasMore || result.NextCursor == nil {
			break
		}
		body.StartCursor = *result.NextCursor
	}

	return records, nil
}

// SetCheckbox performs a single-property partial update on one record.
// It is the write half of the idempotency latch.
func (c *Client) SetCheckbox(ctx context.Context, pageID, property string, value bool) error {
	body := patchRequest{
		Properties: map[string]any{
			property: map[string]any{"checkbox": value},
		},
	}

	var apiErr errorResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(body).
		SetError(&apiErr).
		Patch("/v1/pages/" + pageID)
	if err != nil {
		return fmt.Errorf("update page %s: %w: %v", pageID, ErrStoreUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("update page %s: %w: status %d: %s %s",
			pageID, ErrStoreRejected, resp.StatusCode(), apiErr.Code, apiErr.Message)
	}

	return nil
}

// filterPayload builds the compound predicate for the query request.
// A single condition is sent bare; multiple conditions are wrapped in
// an "and" group.
func (c *Client) filterPayload(f *Filter) any {
	if f == nil {
		return nil
	}

	var conditions []map[string]any
	if f.Status != nil {
		conditions = append(conditions, map[string]any{
			"property": c.cfg.Properties.Status,
			"status":   map[string]any{"equals": *f.Status},
		})
	}
	if f.Notified != nil {
		conditions = append(conditions, map[string]any{
			"property": c.cfg.Properties.Notified,
			"checkbox": map[string]any{"equals": *f.Notified},
		})
	}

	switch len(conditions) {
	case 0:
		return nil
	case 1:
		return conditions[0]
	default:
		return map[string]any{"and": conditions}
	}
}
