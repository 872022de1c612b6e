package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "sitecms:ratelimit"

// Policy sizes one bucket: Capacity requests, refilled evenly over Window.
type Policy struct {
	Capacity int
	Window   time.Duration
}

func (p Policy) validate() error {
	if p.Capacity <= 0 {
		return errors.New("capacity must be positive")
	}
	if p.Window <= 0 {
		return errors.New("window must be positive")
	}
	return nil
}

func (p Policy) refillPerMS() float64 {
	return float64(p.Capacity) / float64(max(p.Window.Milliseconds(), 1))
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds for the Retry-After
// header. A rejected request always reports at least one second.
func (d Decision) RetryAfterSeconds() int {
	if d.Allowed {
		return 0
	}
	return max(1, int(math.Ceil(d.RetryAfter.Seconds())))
}

type Option func(*RedisTokenBucket)

// WithRoute gives route its own policy instead of the default one.
func WithRoute(route string, policy Policy) Option {
	return func(b *RedisTokenBucket) {
		b.routes[normalizeRoute(route)] = policy
	}
}

func WithKeyPrefix(prefix string) Option {
	return func(b *RedisTokenBucket) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			b.keyPrefix = prefix
		}
	}
}

// RedisTokenBucket keeps one bucket per (route, client) pair in Redis so that
// every API replica shares the same counters.
type RedisTokenBucket struct {
	client    redis.UniversalClient
	fallback  Policy
	routes    map[string]Policy
	keyPrefix string
	now       func() time.Time
}

func NewRedisTokenBucket(client redis.UniversalClient, fallback Policy, opts ...Option) (*RedisTokenBucket, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if err := fallback.validate(); err != nil {
		return nil, fmt.Errorf("default policy: %w", err)
	}

	b := &RedisTokenBucket{
		client:    client,
		fallback:  fallback,
		routes:    make(map[string]Policy),
		keyPrefix: DefaultKeyPrefix,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	for route, policy := range b.routes {
		if err := policy.validate(); err != nil {
			return nil, fmt.Errorf("policy for %s: %w", route, err)
		}
	}
	return b, nil
}

// PolicyFor returns the policy applied to route.
func (b *RedisTokenBucket) PolicyFor(route string) Policy {
	if policy, ok := b.routes[normalizeRoute(route)]; ok {
		return policy
	}
	return b.fallback
}

// Allow takes one token from the bucket of client on route.
func (b *RedisTokenBucket) Allow(ctx context.Context, route, client string) (Decision, error) {
	route = normalizeRoute(route)
	policy := b.PolicyFor(route)

	values, err := takeToken.Run(
		ctx,
		b.client,
		[]string{b.key(route, client)},
		policy.Capacity,
		policy.refillPerMS(),
		b.now().UTC().UnixMilli(),
		(2 * policy.Window).Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("take token on %s: %w", route, err)
	}
	if len(values) != 3 {
		return Decision{}, fmt.Errorf("take token on %s: unexpected reply of %d values", route, len(values))
	}

	return Decision{
		Allowed:    values[0] == 1,
		Limit:      int64(policy.Capacity),
		Remaining:  values[1],
		RetryAfter: time.Duration(values[2]) * time.Millisecond,
	}, nil
}

func (b *RedisTokenBucket) key(route, client string) string {
	client = strings.TrimSpace(client)
	if client == "" {
		client = "anonymous"
	}
	return b.keyPrefix + ":" + strings.Trim(route, "/") + ":" + client
}

func normalizeRoute(route string) string {
	route = strings.TrimSuffix(strings.TrimSpace(route), "/")
	if route == "" {
		return "/"
	}
	return route
}

// takeToken refills the bucket for the elapsed time, then spends one token.
// Reply: {allowed, remaining, retry_after_ms}.
var takeToken = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call("HMGET", KEYS[1], "tokens", "at")
local tokens = tonumber(state[1]) or capacity
local at = tonumber(state[2]) or now

tokens = math.min(capacity, tokens + math.max(0, now - at) * rate)

local allowed = 0
local wait = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
else
  wait = math.ceil((1 - tokens) / rate)
end

redis.call("HSET", KEYS[1], "tokens", tokens, "at", now)
redis.call("PEXPIRE", KEYS[1], ttl)

return {allowed, math.floor(tokens), wait}
`)
