// Package devicetype guesses the form factor of a device from its raw user
// agent string without consulting the rule catalogue.
package devicetype

import (
	"strings"

	"github.com/praetorian-inc/uaparser/pkg/matcher"
	"github.com/praetorian-inc/uaparser/pkg/types"
)

var (
	// Group 1 is an unconditional tablet signal. Android devices are tablets
	// only when the rest of the string does not say Mobile.
	tabletPattern = matcher.MustCompile(`(tablet|ipad|playbook|silk)|(android.*)`, false)

	mobilePattern = matcher.MustCompile(
		`Mobile|iP(hone|od|ad)|Android|BlackBerry|IEMobile|Kindle|NetFront|Silk-Accelerated|(hpw|web)OS|Fennec|Minimo|Opera M(obi|ini)|Blazer|Dolfin|Dolphin|Skyfire|Zune`,
		true)
)

// Classify returns the device type of ua: tablet, mobile or desktop. It never
// returns types.DeviceUnknown.
func Classify(ua string) types.DeviceType {
	var m matcher.Match
	if tabletPattern.Match(ua, &m) {
		if m.Get(1) != "" || !strings.Contains(m.Get(2), "Mobile") {
			return types.DeviceTablet
		}
	}
	if mobilePattern.Match(ua, &m) {
		return types.DeviceMobile
	}
	return types.DeviceDesktop
}
