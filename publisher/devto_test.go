package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syndicate-service/config"
)

func devtoForTest(serverURL string) *Devto {
	d := NewDevto(config.DevtoConfig{APIKey: "key-123", PageSize: 2})
	d.baseURL = serverURL
	return d
}

func TestDevtoPublish(t *testing.T) {
	var gotArticle map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/articles", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("api-key"))

		var body struct {
			Article map[string]any `json:"article"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotArticle = body.Article

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":4821,"url":"https://dev.to/wayfarer/hidden-coves"}`))
	}))
	defer server.Close()

	result := devtoForTest(server.URL).Publish(context.Background(), testContent())

	assert.True(t, result.OK)
	assert.Equal(t, "4821", result.RemoteID)
	assert.Equal(t, "https://wayfarerlog.com/hidden-coves-menorca", gotArticle["canonical_url"])
	assert.Equal(t, true, gotArticle["published"])

	tags, _ := gotArticle["tags"].([]any)
	assert.LessOrEqual(t, len(tags), 4)
}

func TestDevtoSkipsWithoutAPIKey(t *testing.T) {
	d := NewDevto(config.DevtoConfig{})
	result := d.Publish(context.Background(), testContent())
	assert.True(t, result.Skipped)
}

func TestDevtoListRemoteURLsPaginates(t *testing.T) {
	pages := map[string]string{
		"1": `[{"canonical_url":"https://wayfarerlog.com/Post-One/"},{"canonical_url":"https://wayfarerlog.com/post-two"}]`,
		"2": `[{"canonical_url":"","url":"https://dev.to/wayfarer/post-three"}]`,
		"3": `[]`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/articles/me/published", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, pages[r.URL.Query().Get("page")])
	}))
	defer server.Close()

	urls, err := devtoForTest(server.URL).ListRemoteURLs(context.Background())
	require.NoError(t, err)

	// Normalized: lowercased, trailing slash stripped.
	assert.True(t, urls["https://wayfarerlog.com/post-one"])
	assert.True(t, urls["https://wayfarerlog.com/post-two"])
	assert.True(t, urls["https://dev.to/wayfarer/post-three"])
	assert.Len(t, urls, 3)
}

func TestDevtoListRemoteURLsDisabled(t *testing.T) {
	d := NewDevto(config.DevtoConfig{})

	urls, err := d.ListRemoteURLs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, urls)
}
