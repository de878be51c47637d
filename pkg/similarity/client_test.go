package similarity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/similarity/search", r.URL.Path)
		require.Equal(t, "42", r.URL.Query().Get("sound_id"))
		require.Equal(t, "lowlevel", r.URL.Query().Get("preset"))
		require.Equal(t, "10", r.URL.Query().Get("num_results"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":false,"results":[{"id":7,"distance":0.12},{"id":9,"distance":0.3}]}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL)
	sounds, err := c.Search(context.Background(), 42, "lowlevel", 10)
	require.NoError(t, err)
	require.Len(t, sounds, 2)
	require.EqualValues(t, 7, sounds[0].ID)
	require.InDelta(t, 0.12, sounds[0].Distance, 1e-9)
}

func TestSearchServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":true,"message":"sound 42 not indexed"}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL)
	_, err := c.Search(context.Background(), 42, "lowlevel", 10)
	require.ErrorContains(t, err, "sound 42 not indexed")
}

func TestSearchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL)
	_, err := c.Search(context.Background(), 42, "lowlevel", 10)
	require.ErrorContains(t, err, "status 500")
}
