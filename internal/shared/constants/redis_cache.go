package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs for the cinetix application.
// Pattern: cinetix:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_LONG   = 24 * time.Hour // membership tiers
	TTL_STATIC_MEDIUM = 12 * time.Hour // product catalog
)

const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // event details
	TTL_SEMI_STATIC_SHORT  = 1 * time.Hour    // event listings
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute // upcoming events
)

const (
	TTL_DYNAMIC_SHORT = 5 * time.Minute  // seat availability
	TTL_REALTIME      = 30 * time.Second // live seat counts
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "cinetix"
)

// ================== EVENTS MODULE ==================

const (
	CACHE_KEY_EVENTS_LIST     = CACHE_PREFIX + ":events:list"     // + :page:X:limit:Y:status:Z
	CACHE_KEY_EVENTS_UPCOMING = CACHE_PREFIX + ":events:upcoming" // + :page:X:limit:Y
	CACHE_KEY_EVENT_DETAIL    = CACHE_PREFIX + ":events:detail:uuid:"
)

const (
	TTL_EVENT_LIST     = TTL_SEMI_STATIC_SHORT
	TTL_EVENT_UPCOMING = TTL_SEMI_STATIC_QUICK
	TTL_EVENT_DETAIL   = TTL_SEMI_STATIC_MEDIUM
)

// ================== SEATS / RESERVATIONS ==================

const (
	CACHE_KEY_SEAT_AVAILABILITY = CACHE_PREFIX + ":seats:availability" // + :event:X
	SEAT_HOLD_KEY_PREFIX        = "seat_hold:"                        // + seat-id, live hold marker
	TTL_SEATS_AVAILABLE         = TTL_DYNAMIC_SHORT
)

// ================== PRODUCTS ==================

const (
	CACHE_KEY_PRODUCTS_LIST = CACHE_PREFIX + ":products:list"
	TTL_PRODUCTS_LIST       = TTL_STATIC_MEDIUM
)

// ================== ANALYTICS ==================

const (
	CACHE_KEY_ANALYTICS_DASHBOARD = CACHE_PREFIX + ":analytics:dashboard"
	TTL_ANALYTICS_DASHBOARD       = TTL_DYNAMIC_SHORT
)

// ================== KEY BUILDERS ==================

func BuildEventsListKey(page, limit int, status string) string {
	return fmt.Sprintf("%s:page:%d:limit:%d:status:%s", CACHE_KEY_EVENTS_LIST, page, limit, status)
}

func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

func BuildSeatAvailabilityKey(eventID string) string {
	return fmt.Sprintf("%s:event:%s", CACHE_KEY_SEAT_AVAILABILITY, eventID)
}

func BuildSeatHoldKey(seatID string) string {
	return SEAT_HOLD_KEY_PREFIX + seatID
}
