package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewsAPIClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		switch r.URL.Path {
		case "/v2/top-headlines":
			assert.Equal(t, "np", r.URL.Query().Get("country"))
			assert.Equal(t, "20", r.URL.Query().Get("pageSize"))
			_, _ = w.Write([]byte(`{"status":"ok","totalResults":1,"articles":[{"source":{"id":null,"name":"Kathmandu Post"},"title":"Paddy planting begins","description":"Farmers in Nepal","publishedAt":"2026-03-17T05:00:00Z"}]}`))
		case "/v2/everything":
			assert.Equal(t, "Nepal agriculture", r.URL.Query().Get("q"))
			assert.Equal(t, "publishedAt", r.URL.Query().Get("sortBy"))
			assert.Equal(t, "2026-03-11T00:00:00Z", r.URL.Query().Get("from"))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"status":"error","code":"rateLimited","message":"Too many requests"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewNewsAPIClient(server.URL+"/v2/", "secret", server.Client(), zap.NewNop())

	articles, err := client.TopHeadlines(context.Background(), "np", 20)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Kathmandu Post", articles[0].Source.Name)
	assert.Nil(t, articles[0].Source.ID)

	_, err = client.Everything(context.Background(), "Nepal agriculture", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rateLimited")
}

func TestNewsAPIClient_NoKey(t *testing.T) {
	client := NewNewsAPIClient("http://127.0.0.1:1", "", nil, zap.NewNop())
	_, err := client.TopHeadlines(context.Background(), "np", 20)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
