package client_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiocode/internal/client"
	"radiocode/internal/decoder"
	"radiocode/internal/server"
	"radiocode/internal/shared"
)

func newServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	api := &server.API{
		Registry: decoder.Builtin(decoder.Options{}),
		History:  server.NewMemoryStore(10),
	}
	if apiKey != "" {
		api.APIKeyDigest = shared.HashAPIKey(apiKey)
	}
	srv := httptest.NewServer(api.Handler(nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	srv := newServer(t, "k")
	c := client.New(srv.URL+"/", "k")
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	names, err := c.Manufacturers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dacia", "ford", "renault"}, names)

	resp, err := c.Decode(ctx, shared.DecodeRequest{Make: "renault", SecurityHash: "C321"})
	require.NoError(t, err)
	assert.Equal(t, &shared.DecodeResponse{Make: "Renault", SecurityHash: "C321", UnlockCode: "680"}, resp)

	entries, err := c.History(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ok", entries[0].Status)
}

func TestClientAPIError(t *testing.T) {
	srv := newServer(t, "")
	c := client.New(srv.URL, "")

	_, err := c.Decode(context.Background(), shared.DecodeRequest{Make: "toyota"})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "Unsupported manufacturer: toyota", apiErr.Body.Message)
	assert.Equal(t, "Unsupported manufacturer: toyota (400)", err.Error())
}

func TestClientUnauthorized(t *testing.T) {
	srv := newServer(t, "right")
	c := client.New(srv.URL, "wrong")

	_, err := c.Decode(context.Background(), shared.DecodeRequest{Make: "dacia", SecurityHash: "B123"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}
