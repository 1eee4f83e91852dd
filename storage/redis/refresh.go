// Package redisstore keeps refresh-token sessions in Redis.
//
// Two keys exist per session:
//
//	<prefix>:session:<employeeID>  hash {refresh, access}
//	<prefix>:access:<accessToken>   employee id
//
// Both share the refresh TTL so an expired session disappears entirely.
package redisstore

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/auth"
)

const (
	fieldRefresh = "refresh"
	fieldAccess  = "access"
)

// NewClient connects to the configured Redis server and pings it.
func NewClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "pinging redis at %s", conf.Redis.Addr)
	}
	return rdb, nil
}

type RefreshStore struct {
	rdb    redis.UniversalClient
	prefix string
}

var _ auth.RefreshStore = (*RefreshStore)(nil) // interface compliance check

func NewRefreshStore(rdb redis.UniversalClient, conf *core.Config) *RefreshStore {
	return &RefreshStore{rdb: rdb, prefix: conf.Redis.KeyPrefix}
}

func (s *RefreshStore) sessionKey(employeeID int64) string {
	return s.prefix + ":session:" + strconv.FormatInt(employeeID, 10)
}

func (s *RefreshStore) accessKey(accessToken string) string {
	return s.prefix + ":access:" + accessToken
}

func (s *RefreshStore) Save(ctx context.Context, employeeID int64, refreshToken, accessToken string, ttl time.Duration) error {
	key := s.sessionKey(employeeID)

	prev, err := s.rdb.HGet(ctx, key, fieldAccess).Result()
	if err != nil && err != redis.Nil {
		return errors.Wrap(err, "reading previous session")
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if prev != "" {
			pipe.Del(ctx, s.accessKey(prev))
		}
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fieldRefresh, refreshToken, fieldAccess, accessToken)
		pipe.Expire(ctx, key, ttl)
		pipe.Set(ctx, s.accessKey(accessToken), employeeID, ttl)
		return nil
	})
	return errors.Wrap(err, "saving session")
}

func (s *RefreshStore) FindByAccessToken(ctx context.Context, accessToken string) (auth.Session, error) {
	id, err := s.rdb.Get(ctx, s.accessKey(accessToken)).Int64()
	if err == redis.Nil {
		return auth.Session{}, auth.ErrSessionNotFound
	} else if err != nil {
		return auth.Session{}, errors.Wrap(err, "reading access index")
	}

	vals, err := s.rdb.HGetAll(ctx, s.sessionKey(id)).Result()
	if err != nil {
		return auth.Session{}, errors.Wrap(err, "reading session")
	}
	// the index may outlive a replaced session for a moment
	if vals[fieldAccess] != accessToken {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	return auth.Session{EmployeeID: id, AccessToken: accessToken, RefreshToken: vals[fieldRefresh]}, nil
}

func (s *RefreshStore) Delete(ctx context.Context, employeeID int64) error {
	key := s.sessionKey(employeeID)
	access, err := s.rdb.HGet(ctx, key, fieldAccess).Result()
	if err != nil && err != redis.Nil {
		return errors.Wrap(err, "reading session")
	}

	keys := []string{key}
	if access != "" {
		keys = append(keys, s.accessKey(access))
	}
	return errors.Wrap(s.rdb.Del(ctx, keys...).Err(), "deleting session")
}
