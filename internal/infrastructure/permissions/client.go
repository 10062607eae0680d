package permissions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client invalidates a user's permission cache in the auth service.
// The call is not part of the removal transaction and is never
// compensated; callers surface failures as server errors.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type invalidateRequest struct {
	UserID string `json:"user_id"`
}

func (c *Client) Invalidate(ctx context.Context, userID string) error {
	body, err := json.Marshal(invalidateRequest{UserID: userID})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/internal/permissions/invalidate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("invalidate permissions for %s: %w", userID, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= 300 {
		return fmt.Errorf("invalidate permissions for %s: status %d", userID, res.StatusCode)
	}
	return nil
}
