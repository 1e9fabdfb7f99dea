package reservations

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cinetix/internal/shared/constants"

	"github.com/redis/go-redis/v9"
)

// AtomicRedisOperations handles atomic Redis operations for seat holding
type AtomicRedisOperations struct {
	redis *redis.Client
}

// NewAtomicRedisOperations creates a new atomic Redis operations handler
func NewAtomicRedisOperations(redisClient *redis.Client) *AtomicRedisOperations {
	return &AtomicRedisOperations{
		redis: redisClient,
	}
}

// Lua script for atomic seat holding - prevents race conditions
const luaAtomicSeatHold = `
-- KEYS[1] = seat hold key
-- ARGV[1] = holder value (user_id:reservation_id)
-- ARGV[2] = ttl_seconds

local seat_hold_key = KEYS[1]

if redis.call("EXISTS", seat_hold_key) == 1 then
    return {0, redis.call("GET", seat_hold_key)}
end

redis.call("SET", seat_hold_key, ARGV[1], "EX", tonumber(ARGV[2]))
return {1, "success"}
`

// Lua script for atomic seat release - only the holder may release
const luaAtomicSeatRelease = `
-- KEYS[1] = seat hold key
-- ARGV[1] = expected holder value

local seat_hold_key = KEYS[1]
local holder = redis.call("GET", seat_hold_key)

if not holder then
    return {0, "hold_not_found"}
end

if holder ~= ARGV[1] then
    return {0, "not_holder"}
end

redis.call("DEL", seat_hold_key)
return {1, "released"}
`

func holdValue(userID, reservationID string) string {
	return userID + ":" + reservationID
}

// AtomicHoldSeat atomically holds a single seat using a Lua script. Returns
// ErrSeatHeld if another holder already owns the seat.
func (a *AtomicRedisOperations) AtomicHoldSeat(ctx context.Context, seatID, userID, reservationID string, ttl time.Duration) error {
	if a.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	keys := []string{constants.BuildSeatHoldKey(seatID)}
	args := []interface{}{
		holdValue(userID, reservationID),
		strconv.Itoa(int(ttl.Seconds())),
	}

	result, err := a.redis.EvalSha(ctx, luaAtomicSeatHold, keys, args...).Result()
	if err != nil {
		// If script is not loaded, try to load and execute
		result, err = a.redis.Eval(ctx, luaAtomicSeatHold, keys, args...).Result()
		if err != nil {
			return fmt.Errorf("failed to execute atomic seat hold: %w", err)
		}
	}

	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) != 2 {
		return fmt.Errorf("unexpected result format from Lua script")
	}

	success, ok := resultArray[0].(int64)
	if !ok {
		return fmt.Errorf("invalid success flag in Lua script result")
	}

	if success == 0 {
		return ErrSeatHeld
	}

	return nil
}

// AtomicReleaseSeat atomically releases a seat hold owned by the given
// reservation. Releasing a hold that no longer exists is not an error; the
// TTL may already have cleaned it up.
func (a *AtomicRedisOperations) AtomicReleaseSeat(ctx context.Context, seatID, userID, reservationID string) error {
	if a.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	keys := []string{constants.BuildSeatHoldKey(seatID)}
	args := []interface{}{holdValue(userID, reservationID)}

	result, err := a.redis.EvalSha(ctx, luaAtomicSeatRelease, keys, args...).Result()
	if err != nil {
		result, err = a.redis.Eval(ctx, luaAtomicSeatRelease, keys, args...).Result()
		if err != nil {
			return fmt.Errorf("failed to execute atomic seat release: %w", err)
		}
	}

	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) != 2 {
		return fmt.Errorf("unexpected result format from Lua script")
	}

	success, ok := resultArray[0].(int64)
	if !ok {
		return fmt.Errorf("invalid success flag in Lua script result")
	}

	if success == 0 {
		reason, _ := resultArray[1].(string)
		if reason == "hold_not_found" {
			return nil
		}
		return fmt.Errorf("failed to release seat hold: %s", reason)
	}

	return nil
}

// PreloadScripts loads Lua scripts into Redis for better performance
func (a *AtomicRedisOperations) PreloadScripts(ctx context.Context) error {
	if a.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	_, err := a.redis.ScriptLoad(ctx, luaAtomicSeatHold).Result()
	if err != nil {
		return fmt.Errorf("failed to load seat hold script: %w", err)
	}

	_, err = a.redis.ScriptLoad(ctx, luaAtomicSeatRelease).Result()
	if err != nil {
		return fmt.Errorf("failed to load seat release script: %w", err)
	}

	return nil
}
