package session

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// Cmdable is the slice of the redis client the manager uses; narrowed so
// tests can stand in a mock.
type Cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SessionManagerRedis layers a liveness check over JWT verification: the
// auth service registers each issued session id in redis and removes it
// on logout, so a signed token with a missing session id is dead.
type SessionManagerRedis struct {
	rdb Cmdable
	jwt SessionManager
}

func NewSessionManagerRedis(rdb Cmdable, jwt SessionManager) *SessionManagerRedis {
	return &SessionManagerRedis{rdb: rdb, jwt: jwt}
}

func (sm *SessionManagerRedis) Check(ctx context.Context, r *http.Request) (*Session, error) {
	sess, err := sm.jwt.Check(ctx, r)
	if err != nil {
		return nil, err
	}

	userIDStr, err := sm.rdb.Get(ctx, sess.SessionID).Result()
	if err != nil {
		return nil, err
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 0)
	if err != nil {
		return nil, err
	}
	if userID != sess.User.ID {
		return nil, errors.New("wrong user")
	}

	return sess, nil
}
