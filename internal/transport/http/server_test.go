package http

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conduit/internal/redis"
)

func TestRedisStack(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := redis.NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	t.Run("feed cache on publishes events", func(t *testing.T) {
		feeds, tags, publisher := redisStack(rdb, true)
		assert.NotNil(t, feeds)
		assert.NotNil(t, tags)
		assert.NotNil(t, publisher)
	})

	t.Run("feed cache off has no publisher", func(t *testing.T) {
		feeds, tags, publisher := redisStack(rdb, false)
		assert.Nil(t, feeds)
		assert.NotNil(t, tags)
		assert.Nil(t, publisher)
	})
}
