package permissions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Invalidate(t *testing.T) {
	t.Run("posts the user id to the invalidation endpoint", func(t *testing.T) {
		var gotPath, gotUserID string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			var body struct {
				UserID string `json:"user_id"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			gotUserID = body.UserID
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		require.NoError(t, client.Invalidate(context.Background(), "42"))
		assert.Equal(t, "/internal/permissions/invalidate", gotPath)
		assert.Equal(t, "42", gotUserID)
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		err := client.Invalidate(context.Background(), "42")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("unreachable service is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		client := NewClient(srv.URL, time.Second)
		require.Error(t, client.Invalidate(context.Background(), "42"))
	})
}
