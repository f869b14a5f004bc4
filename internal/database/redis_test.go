package database

import (
	"context"
	"testing"

	"campus-events/internal/config"
	"campus-events/internal/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()}, logger.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	val, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestConnectRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := ConnectRedis(context.Background(), config.RedisConfig{Addr: addr}, logger.NewNopLogger())
	assert.Error(t, err)
	assert.Nil(t, client)
}
