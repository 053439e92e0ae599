// Package source fetches the record set from the table-data endpoint.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"tabula/internal/model"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the id that correlates a fetch with server logs.
const RequestIDHeader = "X-Request-ID"

// NetworkError reports a fetch that did not produce a usable response: the
// request could not be made, or the server answered with a non-2xx status.
type NetworkError struct {
	StatusCode int // zero when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError reports a response body that is not a valid record set.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode error: %v", e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }

// Client fetches rows from a fixed endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for endpoint. A zero timeout means no limit
// beyond the caller's context.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the URL the client fetches from.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// FetchRows retrieves the full record set. Failures are returned as
// *NetworkError or *DecodeError.
func (c *Client) FetchRows(ctx context.Context) ([]model.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("request creation failed: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &NetworkError{StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected response %s", resp.Status)}
	}

	records, err := decodeRecords(resp.Body)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return records, nil
}

// wireRecord mirrors model.Record with pointer fields so that absent
// fields can be told apart from zero values.
type wireRecord struct {
	ID        *int64  `json:"id"`
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Role      *string `json:"role"`
	CreatedAt *string `json:"created_at"`
}

func decodeRecords(r io.Reader) ([]model.Record, error) {
	var raw []wireRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("expected a JSON array of records")
	}

	records := make([]model.Record, 0, len(raw))
	seen := make(map[int64]int, len(raw))
	for i, w := range raw {
		rec, err := w.record()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if prev, ok := seen[rec.ID]; ok {
			return nil, fmt.Errorf("record %d: duplicate id %d (first seen at record %d)", i, rec.ID, prev)
		}
		seen[rec.ID] = i
		records = append(records, rec)
	}
	return records, nil
}

func (w wireRecord) record() (model.Record, error) {
	switch {
	case w.ID == nil:
		return model.Record{}, fmt.Errorf("missing field %q", "id")
	case w.Name == nil:
		return model.Record{}, fmt.Errorf("missing field %q", "name")
	case w.Email == nil:
		return model.Record{}, fmt.Errorf("missing field %q", "email")
	case w.Role == nil:
		return model.Record{}, fmt.Errorf("missing field %q", "role")
	case w.CreatedAt == nil:
		return model.Record{}, fmt.Errorf("missing field %q", "created_at")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, *w.CreatedAt)
	if err != nil {
		return model.Record{}, fmt.Errorf("invalid created_at %q: %w", *w.CreatedAt, err)
	}

	return model.Record{
		ID:        *w.ID,
		Name:      *w.Name,
		Email:     *w.Email,
		Role:      *w.Role,
		CreatedAt: createdAt.UTC(),
	}, nil
}
