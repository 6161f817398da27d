package types

import (
	"encoding/json"
	"fmt"
)

// DeviceType is the coarse form factor of the device sending a user agent.
type DeviceType int

const (
	DeviceUnknown DeviceType = iota
	DeviceDesktop
	DeviceMobile
	DeviceTablet
)

var deviceTypeNames = map[DeviceType]string{
	DeviceUnknown: "unknown",
	DeviceDesktop: "desktop",
	DeviceMobile:  "mobile",
	DeviceTablet:  "tablet",
}

// String returns the lower-case name of the device type.
func (d DeviceType) String() string {
	if name, ok := deviceTypeNames[d]; ok {
		return name
	}
	return "unknown"
}

// ParseDeviceType converts a name produced by String back to a DeviceType.
func ParseDeviceType(s string) (DeviceType, error) {
	for d, name := range deviceTypeNames {
		if name == s {
			return d, nil
		}
	}
	return DeviceUnknown, fmt.Errorf("unknown device type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d DeviceType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DeviceType) UnmarshalText(text []byte) error {
	parsed, err := ParseDeviceType(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d DeviceType) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DeviceType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}
