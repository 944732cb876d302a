package functions

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

func TestInvoke(t *testing.T) {
	var gotAuth, gotPath string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(map[string]any{"sent": 3})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test", 5*time.Second)

	var result struct {
		Sent int `json:"sent"`
	}
	err := client.Invoke(context.Background(), "send-campaign", map[string]any{"title": "hi"}, &result)
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk_test", gotAuth)
	assert.Equal(t, "/functions/v1/send-campaign", gotPath)
	assert.Equal(t, "hi", gotPayload["title"])
	assert.Equal(t, 3, result.Sent)
}

func TestInvoke_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test", 5*time.Second)
	err := client.Invoke(context.Background(), "draw-winner", map[string]any{"raffle": "r1"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestInvoke_NilOutDiscardsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test", 5*time.Second)
	assert.NoError(t, client.Invoke(context.Background(), "draw-winner", nil, nil))
}
