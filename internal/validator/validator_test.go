package validator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record() map[string]any {
	return map[string]any{
		"schema": map[string]any{
			"type":     "object",
			"required": []any{"name"},
			"properties": map[string]any{
				"name": map[string]any{"type": "string"},
				"age":  map[string]any{"type": "integer"},
			},
		},
		"data": map[string]any{"name": "Ada", "age": float64(36)},
	}
}

func fastRemote(url string) *Remote {
	r := NewRemote(url)
	r.InitialInterval = time.Millisecond
	return r
}

func TestRemoteValidate(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []any
	}{
		{"empty list passes", `[]`, []any{}},
		{"errors fail", `[{"message":"missing name"}]`, []any{map[string]any{"message": "missing name"}}},
		{"object is unrecognised", `{"ok":true}`, []any{UnrecognisedResponse}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				var body map[string]any
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Contains(t, body, "schema")
				_, _ = w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			got, err := fastRemote(srv.URL).Validate(context.Background(), record())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemoteValidateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	got, err := fastRemote(srv.URL).Validate(context.Background(), record())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRemoteValidateGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := fastRemote(srv.URL).Validate(context.Background(), record())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500 Server Error")
	assert.Equal(t, int32(DefaultMaxRetries+1), calls.Load())
}

func TestRemoteValidateClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := fastRemote(srv.URL).Validate(context.Background(), record())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400 Client Error")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRemoteValidateInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := fastRemote(srv.URL).Validate(context.Background(), record())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid validator response")
}

func TestRemotePing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	remote := fastRemote(srv.URL)
	assert.NoError(t, remote.Ping(context.Background()), "any HTTP response is reachable")
	assert.Equal(t, srv.URL, remote.Name())

	srv.Close()
	err := remote.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestLocalValidate(t *testing.T) {
	local := NewLocal()
	assert.Equal(t, LocalName, local.Name())
	assert.NoError(t, local.Ping(context.Background()))

	got, err := local.Validate(context.Background(), record())
	require.NoError(t, err)
	assert.Empty(t, got)

	bad := record()
	bad["data"] = map[string]any{"age": "old"}
	got, err = local.Validate(context.Background(), bad)
	require.NoError(t, err)
	assert.NotEmpty(t, got)

	broken := record()
	broken["schema"] = map[string]any{"type": 12}
	got, err = local.Validate(context.Background(), broken)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "failed to compile schema")
}

func TestNew(t *testing.T) {
	assert.Equal(t, LocalName, New("http://example.invalid", true).Name())
	assert.Equal(t, "http://example.invalid", New("http://example.invalid", false).Name())
}
