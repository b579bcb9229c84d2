package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/channelvault/internal/store/storetest"
)

func TestIngestPlaylist(t *testing.T) {
	var playlist = `#EXTM3U
#EXTINF:-1 tvg-logo="https://logos.example/one.png" group-title="News",Channel One
https://streams.example/one.m3u8
#EXTINF:-1,Channel Two
https://streams.example/two.m3u8
#EXTINF:-1
https://streams.example/nameless.m3u8
`
	var gotPath string
	ps := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(playlist))
	}))
	defer ps.Close()

	fs := newFeedServer(t)
	cfg := fs.config()
	cfg.RefreshOnEmpty = false
	cfg.PlaylistTemplate = ps.URL + "/countries/%s.m3u"
	mem := storetest.NewMemory()
	svc := New(mem, cfg, ps.Client())

	count, err := svc.IngestPlaylist(context.Background(), "US")
	require.NoError(t, err)
	assert.Equal(t, 2, count) // the nameless entry is skipped
	assert.Equal(t, "/countries/us.m3u", gotPath)

	channels, err := mem.ListActiveChannelsByCountry(context.Background(), "US")
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Empty(t, channels[0].ChannelID)
	require.NotNil(t, channels[0].Category)
	assert.Equal(t, "News", *channels[0].Category)

	// Re-ingest updates in place instead of duplicating.
	playlist = `#EXTINF:-1,Channel One
https://streams.example/one-v2.m3u8
`
	count, err = svc.IngestPlaylist(context.Background(), "US")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 2, mem.ChannelCount())

	channels, err = mem.ListActiveChannelsByCountry(context.Background(), "US")
	require.NoError(t, err)
	assert.Equal(t, "https://streams.example/one-v2.m3u8", channels[0].StreamURL)
}

func TestIngestPlaylistFetchError(t *testing.T) {
	ps := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ps.Close()

	fs := newFeedServer(t)
	cfg := fs.config()
	cfg.PlaylistTemplate = ps.URL + "/countries/%s.m3u"
	svc := New(storetest.NewMemory(), cfg, ps.Client())

	_, err := svc.IngestPlaylist(context.Background(), "US")
	assert.Error(t, err)
}
