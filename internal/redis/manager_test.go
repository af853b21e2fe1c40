package redis_test

import (
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/robalyx/stylist/internal/redis"
	"github.com/robalyx/stylist/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManagerReusesClients(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	manager := redis.NewManager(&config.Redis{Host: mr.Host(), Port: port}, zap.NewNop())
	defer manager.Close()

	first, err := manager.GetClient(redis.WeatherCacheDBIndex)
	require.NoError(t, err)
	second, err := manager.GetClient(redis.WeatherCacheDBIndex)
	require.NoError(t, err)
	assert.Same(t, first, second)

	ctx := t.Context()
	require.NoError(t, first.Do(ctx, first.B().Set().Key("k").Value("v").Build()).Error())
	got, err := first.Do(ctx, first.B().Get().Key("k").Build()).ToString()
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestManagerCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	manager := redis.NewManager(&config.Redis{Host: mr.Host(), Port: port}, zap.NewNop())
	_, err = manager.GetClient(redis.WeatherCacheDBIndex)
	require.NoError(t, err)

	manager.Close()
	manager.Close()
}
