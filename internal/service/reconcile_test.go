package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/channelvault/internal/models"
	"github.com/voyagen/channelvault/internal/store"
	"github.com/voyagen/channelvault/internal/store/storetest"
)

// countingStore counts country writes to observe diff-before-write behavior.
type countingStore struct {
	store.Store
	creates int
	updates int
}

func (c *countingStore) CreateCountry(ctx context.Context, co *models.Country) (int64, error) {
	c.creates++
	return c.Store.CreateCountry(ctx, co)
}

func (c *countingStore) UpdateCountry(ctx context.Context, co *models.Country) error {
	c.updates++
	return c.Store.UpdateCountry(ctx, co)
}

func TestCountriesWrittenOnlyWhenChanged(t *testing.T) {
	fs := newFeedServer(t)
	cs := &countingStore{Store: storetest.NewMemory()}
	svc := New(cs, fs.config(), fs.Client())

	require.NoError(t, svc.Refresh(context.Background()))
	firstCreates := cs.creates
	assert.NotZero(t, firstCreates)
	assert.Zero(t, cs.updates)

	// A second refresh with identical metadata writes no country at all.
	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, firstCreates, cs.creates)
	assert.Zero(t, cs.updates)
}

func TestCountryUpdatedWhenFlagDiffers(t *testing.T) {
	fs := newFeedServer(t)
	mem := storetest.NewMemory()
	cs := &countingStore{Store: mem}
	svc := New(cs, fs.config(), fs.Client())

	// Pre-seed US with a stale flag; the refresh should correct it in place.
	staleFlag := "https://flags.example/old-us.png"
	_, err := mem.CreateCountry(context.Background(), &models.Country{
		Name:     "United States",
		Code:     "US",
		FlagURL:  &staleFlag,
		IsActive: true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, 1, cs.updates)

	us, err := mem.GetCountryByCode(context.Background(), "US")
	require.NoError(t, err)
	require.NotNil(t, us.FlagURL)
	assert.Equal(t, "https://flagcdn.com/w320/us.png", *us.FlagURL)
}

func TestChannelUpsertOverwrites(t *testing.T) {
	fs := newFeedServer(t)
	mem := storetest.NewMemory()
	svc := New(mem, fs.config(), fs.Client())

	require.NoError(t, svc.Refresh(context.Background()))

	// The feed moves CNN to a new stream URL; the next refresh overwrites the
	// stored record without diffing.
	fs.streamsBody = `[{"channel":"CNN.us","url":"https://streams.example/cnn-v2.m3u8"}]`
	require.NoError(t, svc.Refresh(context.Background()))

	channels, err := mem.SearchChannels(context.Background(), "US", "cnn")
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "https://streams.example/cnn-v2.m3u8", channels[0].StreamURL)
}
