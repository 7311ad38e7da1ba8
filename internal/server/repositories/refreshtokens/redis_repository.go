package refreshtokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sameershelar/toodo/internal/common"
	"github.com/sameershelar/toodo/internal/server/models"
)

// RedisRepository keeps one hash per record under
// "<prefix>:<user id>:<token digest>". Keys carry a TTL, so expired records
// disappear without a sweeper. DEL is atomic, which is what makes Delete's
// result trustworthy under concurrent refreshes.
type RedisRepository struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

// saveScript creates the record and its TTL in one step, refusing to
// overwrite an existing record.
var saveScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1], "user_id", ARGV[1], "expires_at", ARGV[2], "created_at", ARGV[3])
redis.call("PEXPIRE", KEYS[1], ARGV[4])
return 1
`)

func NewRedisRepository(rdb redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "refresh"
	}
	return &RedisRepository{rdb: rdb, prefix: prefix, now: time.Now}
}

func (r *RedisRepository) key(userID, tokenHash string) string {
	return r.prefix + ":" + userID + ":" + tokenHash
}

func (r *RedisRepository) Save(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	now := r.now()
	ttl := expiresAt.Sub(now)
	if ttl < time.Millisecond {
		return nil
	}
	res, err := saveScript.Run(ctx, r.rdb, []string{r.key(userID, tokenHash)},
		userID, expiresAt.UnixNano(), now.UnixNano(), ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if res == 0 {
		return fmt.Errorf("refresh token %w", common.ErrorAlreadyExists)
	}
	return nil
}

func (r *RedisRepository) Find(ctx context.Context, userID, tokenHash string) (*models.RefreshToken, error) {
	vals, err := r.rdb.HMGet(ctx, r.key(userID, tokenHash), "expires_at", "created_at").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}
	expires, ok1 := unixNano(vals[0])
	created, ok2 := unixNano(vals[1])
	if !ok1 || !ok2 {
		return nil, common.ErrorNotFound
	}

	t := &models.RefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: expires, CreatedAt: created}
	if t.Expired(r.now()) {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (r *RedisRepository) Delete(ctx context.Context, userID, tokenHash string) (bool, error) {
	n, err := r.rdb.Del(ctx, r.key(userID, tokenHash)).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n > 0, nil
}

func unixNano(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	var ns int64
	if _, err := fmt.Sscan(s, &ns); err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}
