package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStreams(t *testing.T) {
	data := []byte(`[
		{"channel":"CNN.us","url":"https://streams.example/cnn.m3u8","quality":"720p"},
		{"channel":"BBCOne.uk","url":"https://streams.example/bbc.m3u8"}
	]`)
	entries, skipped, err := DecodeStreams(data)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, entries, 2)
	assert.Equal(t, "CNN.us", entries[0].Channel)
	assert.Equal(t, "720p", entries[0].Quality)
}

func TestDecodeStreamsSkipsMalformedElements(t *testing.T) {
	data := []byte(`[
		{"channel":"CNN.us","url":"https://streams.example/cnn.m3u8"},
		"not an object",
		{"channel":"BBCOne.uk","url":"https://streams.example/bbc.m3u8"}
	]`)
	entries, skipped, err := DecodeStreams(data)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, entries, 2)
}

func TestDecodeStreamsBadOuterArray(t *testing.T) {
	_, _, err := DecodeStreams([]byte(`{"not":"an array"}`))
	assert.Error(t, err)
}
