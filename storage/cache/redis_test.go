package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ada/core/school"
	testutil "github.com/trezcool/ada/tests"
)

func newTestCache(t *testing.T, ttl time.Duration) (*SettingsCache, *miniredis.Miniredis) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSettingsCache(client, ttl, testutil.NewLogger()), srv
}

func TestSettingsCache_disabled(t *testing.T) {
	ctx := context.Background()
	c := NewSettingsCache(nil, 0, nil)

	c.SetSettings(ctx, school.Settings{SchoolID: "sch-1"})
	_, ok := c.GetSettings(ctx)
	assert.False(t, ok)
	c.DeleteSettings(ctx)

	var nilCache *SettingsCache
	_, ok = nilCache.GetSettings(ctx)
	assert.False(t, ok)
}

func TestSettingsCache_roundTrip(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestCache(t, time.Hour)

	_, ok := c.GetSettings(ctx)
	assert.False(t, ok, "empty cache")

	want := school.Settings{
		ID:         1,
		SchoolID:   "sch-1",
		SchoolName: "Sunrise Public School",
		TransportFees: school.TransportFees{
			Below3:        decimal.RequireFromString("300.50"),
			Between3And5:  decimal.NewFromInt(500),
			Between5And10: decimal.NewFromInt(700),
			Above10:       decimal.NewFromInt(900),
		},
		Classes: []school.Class{
			{ID: 1, Name: "Grade 1", TuitionFee: decimal.NewFromInt(600), AdmissionFee: decimal.NewFromInt(400)},
			{ID: 2, Name: "Grade 2", TuitionFee: decimal.RequireFromString("800.25"), AdmissionFee: decimal.NewFromInt(500)},
		},
	}
	c.SetSettings(ctx, want)
	assert.True(t, srv.Exists(settingsKey))
	assert.Equal(t, time.Hour, srv.TTL(settingsKey))

	got, ok := c.GetSettings(ctx)
	require.True(t, ok)
	assert.Equal(t, want.SchoolID, got.SchoolID)
	assert.Equal(t, want.SchoolName, got.SchoolName)
	assert.True(t, want.TransportFees.Below3.Equal(got.TransportFees.Below3))
	assert.True(t, want.TransportFees.Above10.Equal(got.TransportFees.Above10))
	require.Len(t, got.Classes, 2)
	for i, cls := range want.Classes {
		assert.Equal(t, cls.Name, got.Classes[i].Name)
		assert.True(t, cls.TuitionFee.Equal(got.Classes[i].TuitionFee))
		assert.True(t, cls.AdmissionFee.Equal(got.Classes[i].AdmissionFee))
	}

	c.DeleteSettings(ctx)
	assert.False(t, srv.Exists(settingsKey))
	_, ok = c.GetSettings(ctx)
	assert.False(t, ok, "deleted")
}

func TestSettingsCache_misses(t *testing.T) {
	ctx := context.Background()

	t.Run("expired", func(t *testing.T) {
		c, srv := newTestCache(t, time.Minute)
		c.SetSettings(ctx, school.Settings{SchoolID: "sch-1"})
		srv.FastForward(2 * time.Minute)
		_, ok := c.GetSettings(ctx)
		assert.False(t, ok)
	})

	t.Run("corrupt entry", func(t *testing.T) {
		c, srv := newTestCache(t, time.Minute)
		require.NoError(t, srv.Set(settingsKey, "not json"))
		_, ok := c.GetSettings(ctx)
		assert.False(t, ok)
	})

	t.Run("server down", func(t *testing.T) {
		c, srv := newTestCache(t, time.Minute)
		srv.Close()
		c.SetSettings(ctx, school.Settings{SchoolID: "sch-1"})
		_, ok := c.GetSettings(ctx)
		assert.False(t, ok)
	})
}
