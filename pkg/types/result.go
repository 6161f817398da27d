package types

import "time"

// Result is a classified user agent as persisted by a store. Count is the
// number of times the user agent was recorded.
type Result struct {
	ID         ID         `json:"id"`
	UserAgent  string     `json:"user_agent"`
	Parsed     UserAgent  `json:"parsed"`
	DeviceType DeviceType `json:"device_type"`
	Count      int64      `json:"count"`
	FirstSeen  time.Time  `json:"first_seen"`
	LastSeen   time.Time  `json:"last_seen"`
}

// NewResult builds a Result for one sighting of userAgent at ts.
func NewResult(userAgent string, parsed UserAgent, deviceType DeviceType, ts time.Time) *Result {
	return &Result{
		ID:         ComputeID(userAgent),
		UserAgent:  userAgent,
		Parsed:     parsed,
		DeviceType: deviceType,
		Count:      1,
		FirstSeen:  ts,
		LastSeen:   ts,
	}
}
