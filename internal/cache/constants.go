package cache

import (
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
)

// key names definition
// key names in lua script should follow these formats
const (
	RateLimitKeyPrefix = "ratelimit"
	RateLimitKey       = "ratelimit:%s:%s" // token bucket of a client on a route, first '%s' is client ip, second '%s' is "METHOD route"
)

func MakeRateLimitKey(clientIP, method, route string) string {
	if clientIP == "" {
		clientIP = "unknown"
	}
	if route == "" {
		route = "unmatched"
	}
	return fmt.Sprintf(RateLimitKey, clientIP, strings.ToUpper(method)+" "+route)
}

// lua scripts
var tokenBucketScript = redis.NewScript(`
	-- KEYS[1] = ratelimit:{client}:{route}

	-- ARGV[1] = now in ms
	-- ARGV[2] = capacity
	-- ARGV[3] = refill interval in ms (a full bucket refills over one interval)
	-- ARGV[4] = ttl in seconds

	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local state = redis.call("HMGET", key, "tokens", "last_refill_ms")
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])
	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	-- refill proportionally to the elapsed time
	local per_token_ms = interval_ms / capacity
	local elapsed = math.max(0, now_ms - last_refill)
	local refill = math.floor(elapsed / per_token_ms)
	if refill > 0 then
		tokens = math.min(capacity, tokens + refill)
		last_refill = last_refill + refill * per_token_ms
	end

	local allowed = 0
	local retry_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_ms = math.ceil(per_token_ms - (now_ms - last_refill))
		if retry_ms < 0 then
			retry_ms = 0
		end
	end

	redis.call("HSET", key, "tokens", tokens, "last_refill_ms", last_refill)
	redis.call("EXPIRE", key, ttl)

	return { allowed, tokens, retry_ms }
`)
