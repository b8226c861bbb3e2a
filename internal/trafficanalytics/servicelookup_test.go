package trafficanalytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netguard/fabric/internal/incident"
)

func TestHTTPServiceLookupDecodesServicesAndTier(t *testing.T) {
	var gotReq servicesOverLinksRequest
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"service_ids":["svc-a","svc-b"],"highest_tier":"platinum"}`))
	}))
	defer backend.Close()

	c := NewHTTPServiceLookup(backend.URL, nil)
	services, tier, err := c.ServicesOverLinks(context.Background(), []string{"link-1", "link-2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"svc-a", "svc-b"}, services)
	assert.Equal(t, incident.TierPlatinum, tier)
	assert.Equal(t, []string{"link-1", "link-2"}, gotReq.LinkIDs)
}

func TestHTTPServiceLookupReturnsErrorOnNonOK(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("inventory unavailable"))
	}))
	defer backend.Close()

	c := NewHTTPServiceLookup(backend.URL, nil)
	_, _, err := c.ServicesOverLinks(context.Background(), []string{"link-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inventory unavailable")
}
