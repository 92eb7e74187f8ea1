package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/shipscan/internal/domain"
	"github.com/bnema/shipscan/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveShipment(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/shipments/shp-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":             "shp-1",
			"origin":         "Singapore",
			"batch_id":       "B-1",
			"product_name":   "Tablet Pro",
			"expected_items": 4,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	ref, err := client.ResolveShipment(context.Background(), "shp-1")
	require.NoError(t, err)
	assert.Equal(t, "shp-1", ref.ID)
	assert.Equal(t, "Singapore", ref.Origin)
	assert.Equal(t, 4, ref.ExpectedItems)
}

func TestResolveShipmentNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such shipment", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	_, err := client.ResolveShipment(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrShipmentNotFound)
}

func TestResolveShipmentServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	_, err := client.ResolveShipment(context.Background(), "shp-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrShipmentNotFound)
}

func TestVerifyAndConfirmAccepted(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/shipments/shp-1/scans", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			ItemRef string `json:"item_ref"`
			ActorID string `json:"actor_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "I1", body.ItemRef)
		assert.Equal(t, "retailer-1", body.ActorID)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"accepted": true,
			"receipt":  "rcpt-abc",
			"sequence": 7,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	result, err := client.VerifyAndConfirm(context.Background(), "shp-1", "I1", "retailer-1")
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Equal(t, "rcpt-abc", result.Receipt)
	assert.Equal(t, 7, result.Sequence)
}

func TestVerifyAndConfirmRejected(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accepted": false,
			"reason":   "NOT_IN_SHIPMENT",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	result, err := client.VerifyAndConfirm(context.Background(), "shp-1", "stray", "retailer-1")
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, domain.ReasonNotInShipment, result.Reason)
}

func TestVerifyAndConfirmHonorsContextDeadline(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client := NewClient(server.URL, server.Client())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.VerifyAndConfirm(ctx, "shp-1", "I1", "retailer-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReportException(t *testing.T) {
	t.Parallel()

	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shipments/shp-1/exceptions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	err := client.ReportException(context.Background(), ports.ExceptionReport{
		ShipmentID:    "shp-1",
		ActorID:       "warehouse-1",
		Message:       "2 damaged",
		ScannedCount:  2,
		ExpectedCount: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "2 damaged", got["message"])
	assert.Equal(t, float64(5), got["expected_count"])
}

func TestReportExceptionServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	err := client.ReportException(context.Background(), ports.ExceptionReport{ShipmentID: "shp-1"})
	assert.ErrorContains(t, err, "502")
}
