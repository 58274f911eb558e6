package mercadopago

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cauceflow/cauce/pkg/ports"
)

func TestGenerateLink(t *testing.T) {
	var idemKeys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "Bearer mp-token", r.Header.Get("Authorization"))
		idemKeys = append(idemKeys, r.Header.Get("X-Idempotency-Key"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		items := req["items"].([]any)
		item := items[0].(map[string]any)
		assert.Equal(t, "Reserva Corte", item["title"])
		assert.Equal(t, 3000.0, item["unit_price"])
		assert.Equal(t, "tienda-1:+5491155550001", req["external_reference"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"init_point": "https://mp.test/checkout/abc",
		})
	}))
	defer srv.Close()

	c := New(StaticToken("mp-token"), WithBaseURL(srv.URL))
	req := ports.PaymentRequest{
		TenantID: "tienda-1",
		Title:    "Reserva Corte",
		Amount:   3000,
		Address:  "+5491155550001",
	}

	resp, err := c.GenerateLink(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "https://mp.test/checkout/abc", resp.PaymentURL)

	// Each call carries a fresh idempotency key.
	resp2, err := c.GenerateLink(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp2.Success)
	require.Len(t, idemKeys, 2)
	assert.NotEmpty(t, idemKeys[0])
	assert.NotEqual(t, idemKeys[0], idemKeys[1])
}

func TestGenerateLinkSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"message": "invalid unit_price"})
	}))
	defer srv.Close()

	c := New(StaticToken("mp-token"), WithBaseURL(srv.URL))
	resp, err := c.GenerateLink(context.Background(), ports.PaymentRequest{TenantID: "t", Amount: -1})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid unit_price", resp.Error)
}

func TestGenerateLinkMissingCredentials(t *testing.T) {
	c := New(func(string) (string, error) {
		return "", assert.AnError
	})
	_, err := c.GenerateLink(context.Background(), ports.PaymentRequest{TenantID: "t"})
	assert.Error(t, err)
}

func TestGenerateLinkWithoutInitPoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	c := New(StaticToken("mp-token"), WithBaseURL(srv.URL))
	resp, err := c.GenerateLink(context.Background(), ports.PaymentRequest{TenantID: "t", Amount: 10})
	require.NoError(t, err)
	assert.False(t, resp.Success)
}
