package redis_test

import (
	"context"
	"net"
	"testing"

	"guesthouse/config"
	"guesthouse/infras/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConnectsToPrimary(t *testing.T) {
	server := miniredis.RunT(t)

	host, port, err := net.SplitHostPort(server.Addr())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Cache.Redis.Primary.Host = host
	cfg.Cache.Redis.Primary.Port = port

	client := redis.New(cfg)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "stats:overview", "cached", 0).Err())
	assert.True(t, server.Exists("stats:overview"))
}

func TestOptions(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Redis.Primary.Host = "cache.internal"
	cfg.Cache.Redis.Primary.Port = "6380"
	cfg.Cache.Redis.Primary.Password = "secret"
	cfg.Cache.Redis.Primary.DB = 2

	opts := redis.Options(cfg)

	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
}
