package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLockTTL      = 5 * time.Second
	defaultPollInterval = 50 * time.Millisecond
)

const publishPairScript = `
local gen = redis.call("HGET", KEYS[1], "gen")
if gen == false then
  gen = "0"
end
if gen ~= ARGV[1] then
  return 0
end
redis.call("HSET", KEYS[1], "access", ARGV[2], "refresh", ARGV[3], "gen", tostring(tonumber(ARGV[1]) + 1))
if tonumber(ARGV[4]) > 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[4])
end
return 1
`

var publishPairLua = redis.NewScript(publishPairScript)

const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var releaseLockLua = redis.NewScript(releaseLockScript)

// RedisConfig holds Redis token store tuning parameters.
type RedisConfig struct {
	// Prefix namespaces every key. Defaults to "gg".
	Prefix string

	// Scope distinguishes token sets sharing one Redis, typically the
	// tenant or application id. Required.
	Scope string

	// LockTTL bounds one cross-process refresh episode. A lock loser
	// polls for the winner's token for at most this long.
	LockTTL time.Duration

	// PollInterval is the lock loser's re-read cadence.
	PollInterval time.Duration

	// Refresh exchanges the stored refresh token for a rotated pair.
	Refresh RefreshFunc
}

// Redis shares one token pair across processes. Exactly one instance
// performs the upstream exchange per episode; the rest adopt its result.
type Redis struct {
	client redis.UniversalClient
	config RedisConfig
}

// NewRedis describes the newredis operation and its observable behavior.
//
// NewRedis may return an error when input validation, dependency calls, or security checks fail.
// NewRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedis(client redis.UniversalClient, cfg RedisConfig) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if cfg.Scope == "" {
		return nil, errors.New("scope required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "gg"
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	return &Redis{client: client, config: cfg}, nil
}

func (r *Redis) pairKey() string {
	return r.config.Prefix + ":t:" + r.config.Scope
}

func (r *Redis) lockKey() string {
	return r.config.Prefix + ":lock:" + r.config.Scope
}

// Save publishes a token pair unconditionally, bumping the generation.
// Used to seed the store after an interactive login.
func (r *Redis) Save(ctx context.Context, pair TokenPair) error {
	gen, _, _, err := r.readState(ctx)
	if err != nil {
		return err
	}

	ok, err := r.publish(ctx, gen, pair)
	if err != nil {
		return err
	}
	if !ok {
		// Concurrent writer advanced the generation between read and CAS;
		// one more attempt against the fresh generation.
		gen, _, _, err = r.readState(ctx)
		if err != nil {
			return err
		}
		ok, err = r.publish(ctx, gen, pair)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: save lost generation race twice", ErrRedisUnavailable)
		}
	}
	return nil
}

// AccessToken describes the accesstoken operation and its observable behavior.
//
// AccessToken may return an error when input validation, dependency calls, or security checks fail.
// AccessToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Redis) AccessToken(ctx context.Context) (string, error) {
	if r == nil || r.client == nil {
		return "", nil
	}

	access, err := r.client.HGet(ctx, r.pairKey(), "access").Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return access, nil
}

// Refresh rotates the shared pair. The SET NX lock elects one rotating
// instance per episode across every process sharing the scope; losers
// poll for the winner's published token instead of calling upstream.
func (r *Redis) Refresh(ctx context.Context) (string, error) {
	if r == nil || r.client == nil {
		return "", ErrRefreshUnavailable
	}
	if r.config.Refresh == nil {
		return "", ErrNoRefreshFunc
	}

	staleGen, _, _, err := r.readState(ctx)
	if err != nil {
		return "", err
	}

	lockID := uuid.NewString()
	acquired, err := r.client.SetNX(ctx, r.lockKey(), lockID, r.config.LockTTL).Result()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if !acquired {
		return r.awaitWinner(ctx, staleGen)
	}

	defer func() {
		_, _ = releaseLockLua.Run(context.WithoutCancel(ctx), r.client, []string{r.lockKey()}, lockID).Result()
	}()

	// Re-read under the lock: another instance may have rotated between
	// our stale read and lock acquisition.
	gen, access, refreshToken, err := r.readState(ctx)
	if err != nil {
		return "", err
	}
	if gen != staleGen && access != "" {
		return access, nil
	}
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	pair, err := r.config.Refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	published, err := r.publish(ctx, gen, pair)
	if err != nil {
		return "", err
	}
	if !published {
		// CAS lost despite the lock (a Save raced in); adopt whatever won.
		_, access, _, err := r.readState(ctx)
		if err != nil {
			return "", err
		}
		if access != "" {
			return access, nil
		}
		return "", ErrRefreshUnavailable
	}

	return pair.AccessToken, nil
}

func (r *Redis) awaitWinner(ctx context.Context, staleGen int64) (string, error) {
	deadline := time.Now().Add(r.config.LockTTL)
	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		gen, access, _, err := r.readState(ctx)
		if err != nil {
			return "", err
		}
		if gen != staleGen && access != "" {
			return access, nil
		}
	}

	return "", ErrLockTimeout
}

func (r *Redis) readState(ctx context.Context) (gen int64, access, refresh string, err error) {
	values, err := r.client.HMGet(ctx, r.pairKey(), "gen", "access", "refresh").Result()
	if err != nil {
		return 0, "", "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if raw, ok := values[0].(string); ok {
		gen, _ = strconv.ParseInt(raw, 10, 64)
	}
	access, _ = values[1].(string)
	refresh, _ = values[2].(string)

	return gen, access, refresh, nil
}

func (r *Redis) publish(ctx context.Context, gen int64, pair TokenPair) (bool, error) {
	var ttlMillis int64
	if !pair.ExpiresAt.IsZero() {
		ttlMillis = time.Until(pair.ExpiresAt).Milliseconds()
		if ttlMillis <= 0 {
			ttlMillis = 1
		}
	}

	res, err := publishPairLua.Run(ctx, r.client,
		[]string{r.pairKey()},
		strconv.FormatInt(gen, 10),
		pair.AccessToken,
		pair.RefreshToken,
		strconv.FormatInt(ttlMillis, 10),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return res == 1, nil
}
