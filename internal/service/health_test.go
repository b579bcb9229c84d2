package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/channelvault/internal/models"
	"github.com/voyagen/channelvault/internal/store"
	"github.com/voyagen/channelvault/internal/store/storetest"
)

// streamServer serves a fixed body and counts probe hits.
type streamServer struct {
	*httptest.Server
	body string
	hits int
}

func newStreamServer(t *testing.T, body string) *streamServer {
	t.Helper()
	ss := &streamServer{body: body}
	ss.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ss.hits++
		w.Write([]byte(ss.body))
	}))
	t.Cleanup(ss.Close)
	return ss
}

func healthService(t *testing.T, ss *streamServer, streamURL string) (*Service, int64) {
	t.Helper()
	fs := newFeedServer(t)
	cfg := fs.config()
	cfg.RefreshOnEmpty = false
	mem := storetest.NewMemory()
	id, err := mem.UpsertChannel(context.Background(), &models.Channel{
		ChannelID: "CNN.us", Name: "CNN", StreamURL: streamURL, CountryCode: "US", IsActive: true,
	})
	require.NoError(t, err)
	return New(mem, cfg, ss.Client()), id
}

func TestChannelHealthOnline(t *testing.T) {
	ss := newStreamServer(t, "#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=1280000\nchunklist.m3u8\n")
	svc, id := healthService(t, ss, ss.URL+"/live.m3u8")

	rep, err := svc.ChannelHealth(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusOnline, rep.StreamStatus)
	assert.Equal(t, "HLS (.m3u8)", rep.StreamType)
	assert.Equal(t, "CNN", rep.ChannelName)
	assert.Equal(t, 1, ss.hits)
	assert.NotZero(t, rep.Timestamp)
}

func TestChannelHealthWarningForPlainPlaylist(t *testing.T) {
	ss := newStreamServer(t, "#EXTM3U\nhttp://cdn.example/stream.ts\n")
	svc, id := healthService(t, ss, ss.URL+"/live.m3u8")

	rep, err := svc.ChannelHealth(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusWarning, rep.StreamStatus)
}

func TestChannelHealthOfflineOnFetchError(t *testing.T) {
	ss := newStreamServer(t, "")
	url := ss.URL + "/live.m3u8"
	ss.Close() // probe target is down
	svc, id := healthService(t, ss, url)

	rep, err := svc.ChannelHealth(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusOffline, rep.StreamStatus)
	assert.Equal(t, "Unknown", rep.StreamType)
}

func TestChannelHealthOfflineOnGarbage(t *testing.T) {
	ss := newStreamServer(t, "<html>not a stream</html>")
	svc, id := healthService(t, ss, ss.URL+"/live.m3u8")

	rep, err := svc.ChannelHealth(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusOffline, rep.StreamStatus)
}

func TestChannelHealthUnknownChannel(t *testing.T) {
	ss := newStreamServer(t, "")
	svc, id := healthService(t, ss, ss.URL+"/live.m3u8")

	_, err := svc.ChannelHealth(context.Background(), id+42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestValidateHLSRejectsNonHLSBeforeNetwork(t *testing.T) {
	ss := newStreamServer(t, "#EXTM3U")
	svc, _ := healthService(t, ss, ss.URL+"/live.m3u8")

	_, err := svc.ValidateHLS(context.Background(), ss.URL+"/stream.ts")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Zero(t, ss.hits)
}

func TestValidateHLS(t *testing.T) {
	ss := newStreamServer(t, "#EXTM3U\n#EXT-X-VERSION:3\nsegment0.ts\n")
	svc, _ := healthService(t, ss, ss.URL+"/live.m3u8")

	content, err := svc.ValidateHLS(context.Background(), ss.URL+"/live.m3u8")
	require.NoError(t, err)
	assert.Contains(t, content, "#EXTM3U")
}

func TestValidateHLSEmptyBody(t *testing.T) {
	ss := newStreamServer(t, "   \n")
	svc, _ := healthService(t, ss, ss.URL+"/live.m3u8")

	_, err := svc.ValidateHLS(context.Background(), ss.URL+"/live.m3u8")
	assert.ErrorIs(t, err, ErrInvalidStream)
}

func TestValidateHLSUnrecognizableBody(t *testing.T) {
	ss := newStreamServer(t, "<html>404</html>")
	svc, _ := healthService(t, ss, ss.URL+"/live.m3u8")

	_, err := svc.ValidateHLS(context.Background(), ss.URL+"/live.m3u8")
	assert.ErrorIs(t, err, ErrInvalidStream)
}
