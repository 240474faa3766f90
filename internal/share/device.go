package share

import (
	"os"
	"runtime"
	"strings"

	"golang.org/x/text/language"
)

// DeviceInfo is the metadata attached to every share
type DeviceInfo struct {
	Device       string `json:"device" yaml:"device"`
	Brand        string `json:"brand" yaml:"brand"`
	Manufacturer string `json:"manufacturer" yaml:"manufacturer"`
	APILevel     string `json:"api_level" yaml:"api_level"`
	Locale       string `json:"locale,omitempty" yaml:"locale,omitempty"`
}

// DetectDevice describes the machine the host runs on
func DetectDevice() DeviceInfo {
	info := platformDevice()
	if info.Device == "" {
		info.Device, _ = os.Hostname()
	}
	if info.Brand == "" {
		info.Brand = runtime.GOOS
	}
	if info.Manufacturer == "" {
		info.Manufacturer = runtime.GOARCH
	}
	if info.APILevel == "" {
		info.APILevel = runtime.Version()
	}
	info.Locale = HostLocale().String()
	return info
}

// HostLocale reads the POSIX locale variables in priority order and returns
// the matching BCP 47 tag, or language.Und.
func HostLocale() language.Tag {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if tag, ok := parsePOSIXLocale(os.Getenv(key)); ok {
			return tag
		}
	}
	return language.Und
}

// parsePOSIXLocale converts values such as "de_CH.UTF-8@euro" to a tag
func parsePOSIXLocale(v string) (language.Tag, bool) {
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	if v == "" || v == "C" || v == "POSIX" {
		return language.Und, false
	}
	tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
	if err != nil {
		return language.Und, false
	}
	return tag, true
}
