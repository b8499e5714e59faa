package openerapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	c := NewClient(5*time.Second, zerolog.Nop())
	c.baseURL = serverURL
	return c
}

func TestGetRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/USD", r.URL.Path)
		w.Write([]byte(`{"result":"success","base_code":"USD","rates":{"COP":4075.25}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	rate, err := client.GetRate(context.Background(), "USD", "COP")
	require.NoError(t, err)
	assert.Equal(t, 4075.25, rate)
}

func TestGetRate_ReportedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"error","error-type":"unsupported-code"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetRate(context.Background(), "USD", "COP")
	assert.Error(t, err)
}

func TestGetRate_SameCurrency(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")

	rate, err := client.GetRate(context.Background(), "COP", "COP")
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)
}

func TestGetRate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetRate(context.Background(), "USD", "COP")
	assert.Error(t, err)
}

func TestName(t *testing.T) {
	client := NewClient(time.Second, zerolog.Nop())
	assert.Equal(t, "open-er-api", client.Name())
}
