package serve

import (
	"encoding/json"

	"github.com/praetorian-inc/uaparser/pkg/types"
)

// Request represents an incoming NDJSON request
type Request struct {
	Type    string          `json:"type"` // "parse" | "parse_batch" | "device_type" | "close"
	Payload json.RawMessage `json:"payload"`
}

// ParsePayload is the payload for "parse" and "device_type" requests
type ParsePayload struct {
	UserAgent string `json:"user_agent"`
}

// ParseBatchPayload is the payload for "parse_batch" requests
type ParseBatchPayload struct {
	UserAgents []string `json:"user_agents"`
}

// Response represents an outgoing NDJSON response
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"` // "ready" | "parse" | "parse_batch" | "device_type" | "error"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version string `json:"version"`
	Rules   int    `json:"rules"`
}

// ParseData is the classification of one user agent.
type ParseData struct {
	UserAgent  string           `json:"user_agent"`
	Browser    types.Agent      `json:"browser"`
	OS         types.Agent      `json:"os"`
	Device     types.Device     `json:"device"`
	DeviceType types.DeviceType `json:"device_type"`
}

// ParseBatchData is the data field for "parse_batch" responses, in request
// order.
type ParseBatchData struct {
	Results []ParseData `json:"results"`
}

// DeviceTypeData is the data field for "device_type" responses
type DeviceTypeData struct {
	DeviceType types.DeviceType `json:"device_type"`
}
