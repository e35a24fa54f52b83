package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSenderPostsNotification(t *testing.T) {
	var got sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/send", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender, err := NewHTTPSender(Config{GatewayURL: server.URL, APIKey: "secret"})
	require.NoError(t, err)

	err = sender.Send(context.Background(), "device-token-1", "Extreme Flow Alert: Boulder Creek", "Forecast flow of 900 cfs Today exceeds the 100-year flood threshold (870 cfs).", map[string]string{"station_id": "ABC123"})
	require.NoError(t, err)

	assert.Equal(t, "device-token-1", got.Token)
	assert.Equal(t, "Extreme Flow Alert: Boulder Creek", got.Title)
	assert.Contains(t, got.Body, "900 cfs")
	assert.Equal(t, "ABC123", got.Data["station_id"])
}

func TestHTTPSenderGatewayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusBadRequest)
	}))
	defer server.Close()

	sender, err := NewHTTPSender(Config{GatewayURL: server.URL})
	require.NoError(t, err)

	err = sender.Send(context.Background(), "bad-token", "title", "body", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestHTTPSenderUnreachableGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	sender, err := NewHTTPSender(Config{GatewayURL: server.URL})
	require.NoError(t, err)

	err = sender.Send(context.Background(), "token", "title", "body", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "push: send")
}

func TestHTTPSenderRequiresGatewayURL(t *testing.T) {
	_, err := NewHTTPSender(Config{})
	require.Error(t, err)
}

func TestLogSenderAlwaysSucceeds(t *testing.T) {
	sender := NewLogSender()
	err := sender.Send(context.Background(), "a-very-long-device-token", "title", "body", map[string]string{"k": "v"})
	require.NoError(t, err)
}

func TestTruncateToken(t *testing.T) {
	assert.Equal(t, "short", truncateToken("short"))
	assert.Equal(t, "12345678...", truncateToken("1234567890abcdef"))
}
