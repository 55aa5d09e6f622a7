package publisher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syndicate-service/config"
	"syndicate-service/model"
)

func testContent() model.PublishableContent {
	return model.PublishableContent{
		Title:       "Hidden Coves of Menorca",
		Description: "Seven quiet swimming spots you can still reach on foot.",
		Link:        "https://wayfarerlog.com/hidden-coves-menorca",
		Image:       "https://wayfarerlog.com/images/coves.jpg",
		Category:    "destinations",
		Keywords:    []string{"menorca", "beaches"},
	}
}

func TestMastodonPublish(t *testing.T) {
	var gotAuth, gotStatus string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/statuses", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseForm())
		gotStatus = r.PostForm.Get("status")
		w.Write([]byte(`{"id":"114", "url":"https://mastodon.example/@wayfarer/114"}`))
	}))
	defer server.Close()

	m := NewMastodon(config.MastodonConfig{Server: server.URL, AccessToken: "token-abc"})
	result := m.Publish(context.Background(), testContent())

	assert.True(t, result.OK)
	assert.False(t, result.Skipped)
	assert.Equal(t, "114", result.RemoteID)
	assert.Equal(t, "Bearer token-abc", gotAuth)
	assert.Contains(t, gotStatus, "Hidden Coves of Menorca")
	assert.Contains(t, gotStatus, "https://wayfarerlog.com/hidden-coves-menorca")
	assert.Contains(t, gotStatus, "#menorca")
	assert.LessOrEqual(t, len([]rune(gotStatus)), mastodonStatusLimit)
}

func TestMastodonSkipsWithoutToken(t *testing.T) {
	m := NewMastodon(config.MastodonConfig{Server: "https://mastodon.social"})

	result := m.Publish(context.Background(), testContent())

	assert.True(t, result.Skipped)
	assert.True(t, result.OK)
}

func TestMastodonServerErrorIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	m := NewMastodon(config.MastodonConfig{Server: server.URL, AccessToken: "token"})
	result := m.Publish(context.Background(), testContent())

	assert.False(t, result.OK)
	assert.False(t, result.Skipped)
	assert.NotEmpty(t, result.Error)
}

func TestMastodonExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/search", r.URL.Path)
		assert.Equal(t, "statuses", r.URL.Query().Get("type"))
		w.Write([]byte(`{"statuses":[{"content":"<p>Read it at <a href=\"https://wayfarerlog.com/hidden-coves-menorca\">the blog</a></p>"}]}`))
	}))
	defer server.Close()

	m := NewMastodon(config.MastodonConfig{Server: server.URL, AccessToken: "token"})

	exists, err := m.Exists(context.Background(), "https://wayfarerlog.com/hidden-coves-menorca/")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMastodonExistsNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"statuses":[]}`))
	}))
	defer server.Close()

	m := NewMastodon(config.MastodonConfig{Server: server.URL, AccessToken: "token"})

	exists, err := m.Exists(context.Background(), "https://wayfarerlog.com/other-post")
	require.NoError(t, err)
	assert.False(t, exists)
}
