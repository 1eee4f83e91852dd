package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/auth"
)

func newStore(t *testing.T) (*RefreshStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRefreshStore(rdb, core.NewTestConfig()), mr
}

func TestRefreshStore_SaveAndFind(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 7, "refresh-1", "access-1", time.Hour))

	sess, err := s.FindByAccessToken(ctx, "access-1")
	require.NoError(t, err)
	assert.Equal(t, auth.Session{EmployeeID: 7, AccessToken: "access-1", RefreshToken: "refresh-1"}, sess)
	assert.True(t, mr.Exists("test:session:7"))
	assert.Equal(t, time.Hour, mr.TTL("test:access:access-1"))

	_, err = s.FindByAccessToken(ctx, "unknown")
	assert.Equal(t, auth.ErrSessionNotFound, err)
}

func TestRefreshStore_SaveReplacesPreviousSession(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 7, "refresh-1", "access-1", time.Hour))
	require.NoError(t, s.Save(ctx, 7, "refresh-2", "access-2", time.Hour))

	_, err := s.FindByAccessToken(ctx, "access-1")
	assert.Equal(t, auth.ErrSessionNotFound, err)
	assert.False(t, mr.Exists("test:access:access-1"))

	sess, err := s.FindByAccessToken(ctx, "access-2")
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", sess.RefreshToken)
}

func TestRefreshStore_Expiry(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 7, "refresh-1", "access-1", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := s.FindByAccessToken(ctx, "access-1")
	assert.Equal(t, auth.ErrSessionNotFound, err)
}

func TestRefreshStore_Delete(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 7, "refresh-1", "access-1", time.Hour))
	require.NoError(t, s.Delete(ctx, 7))

	_, err := s.FindByAccessToken(ctx, "access-1")
	assert.Equal(t, auth.ErrSessionNotFound, err)
	assert.False(t, mr.Exists("test:session:7"))

	// deleting a missing session is not an error
	assert.NoError(t, s.Delete(ctx, 99))
}
