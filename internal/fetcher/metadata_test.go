package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/channels.json":
			w.Write([]byte(`[
				{"id":"CNN.us","name":"CNN","country":"US","categories":["news"],"languages":["en"]},
				{"id":"","name":"No ID"},
				{"id":"BBCOne.uk","name":"BBC One","country":"GB"}
			]`))
		case "/logos.json":
			w.Write([]byte(`[
				{"channel":"CNN.us","url":"https://logos.example/cnn-small.png","width":64},
				{"channel":"CNN.us","url":"https://logos.example/cnn-wide.png","width":512},
				{"channel":"BBCOne.uk","url":"https://logos.example/bbc-first.png","width":64},
				{"channel":"BBCOne.uk","url":"https://logos.example/bbc-second.png","width":32},
				{"channel":"","url":"https://logos.example/nochannel.png","width":512}
			]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	idx := BuildIndex(context.Background(), srv.Client(), Feeds{
		ChannelsURL: srv.URL + "/channels.json",
		LogosURL:    srv.URL + "/logos.json",
		Timeout:     5 * time.Second,
	})

	// Entries without an id are skipped.
	require.Len(t, idx.Channels, 2)
	assert.Equal(t, "CNN", idx.Channels["CNN.us"].Name)
	assert.Equal(t, []string{"news"}, idx.Channels["CNN.us"].Categories)

	// A wider logo replaces an earlier pick; a narrower one does not.
	assert.Equal(t, "https://logos.example/cnn-wide.png", idx.Logos["CNN.us"])
	assert.Equal(t, "https://logos.example/bbc-first.png", idx.Logos["BBCOne.uk"])
	assert.NotContains(t, idx.Logos, "")

	// Countries come from the embedded resource.
	assert.NotEmpty(t, idx.Countries)
	assert.Equal(t, "United States", idx.Countries["US"].Name)
}

func TestBuildIndexFeedFailureTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	idx := BuildIndex(context.Background(), srv.Client(), Feeds{
		ChannelsURL: srv.URL + "/channels.json",
		LogosURL:    srv.URL + "/logos.json",
		Timeout:     5 * time.Second,
	})

	// Failed feeds leave their tables empty; the embedded countries still load.
	assert.Empty(t, idx.Channels)
	assert.Empty(t, idx.Logos)
	assert.NotEmpty(t, idx.Countries)
}
