package types

import "strings"

const (
	// Other is the family of a category no rule matched.
	Other = "Other"
	// SpiderFamily is the device family catalogues assign to crawlers.
	SpiderFamily = "Spider"
)

// Device is the device identity of a user agent.
type Device struct {
	Family string `json:"family"`
	Brand  string `json:"brand,omitempty"`
	Model  string `json:"model,omitempty"`
}

// Agent is a versioned identity, used for both browsers and operating
// systems. Absent version components are empty.
type Agent struct {
	Family     string `json:"family"`
	Major      string `json:"major,omitempty"`
	Minor      string `json:"minor,omitempty"`
	Patch      string `json:"patch,omitempty"`
	PatchMinor string `json:"patch_minor,omitempty"`
}

// UserAgent is the full classification of one user agent string.
type UserAgent struct {
	Device  Device `json:"device"`
	OS      Agent  `json:"os"`
	Browser Agent  `json:"browser"`
}

// UnknownDevice returns the identity of an unmatched device.
func UnknownDevice() Device {
	return Device{Family: Other}
}

// UnknownAgent returns the identity of an unmatched browser or OS.
func UnknownAgent() Agent {
	return Agent{Family: Other}
}

// VersionString formats the version as major.minor.patch, rendering absent
// components as "0".
func (a Agent) VersionString() string {
	return orZero(a.Major) + "." + orZero(a.Minor) + "." + orZero(a.Patch)
}

// String returns the family followed by the version, e.g. "Mobile Safari 5.1.0".
func (a Agent) String() string {
	return a.Family + " " + a.VersionString()
}

// IsUnknown reports whether no rule matched.
func (a Agent) IsUnknown() bool {
	return a.Family == Other
}

// IsUnknown reports whether no rule matched.
func (d Device) IsUnknown() bool {
	return d.Family == Other
}

// FullString describes browser and OS, e.g. "Mobile Safari 5.1.0/iOS 5.1.1".
func (ua UserAgent) FullString() string {
	return ua.Browser.String() + "/" + ua.OS.String()
}

// IsSpider reports whether the device was classified as a crawler.
func (ua UserAgent) IsSpider() bool {
	return ua.Device.Family == SpiderFamily
}

func orZero(s string) string {
	if strings.TrimSpace(s) == "" {
		return "0"
	}
	return s
}
