package service

import (
	"net/netip"
	"strings"
)

// Operating system families recorded on scan events.
const (
	OSAndroid = "Android"
	OSiOS     = "iOS"
	OSWindows = "Windows"
	OSmacOS   = "macOS"
	OSLinux   = "Linux"
	OSOther   = "Other"
)

var osMatchers = []struct {
	needles []string
	family  string
}{
	{[]string{"android"}, OSAndroid},
	{[]string{"iphone", "ipad", "ipod"}, OSiOS},
	{[]string{"windows"}, OSWindows},
	{[]string{"macintosh", "mac os"}, OSmacOS},
	{[]string{"linux"}, OSLinux},
}

// DetectOS maps a user agent to an OS family. Order matters: Android user
// agents also mention Linux.
func DetectOS(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, m := range osMatchers {
		for _, needle := range m.needles {
			if strings.Contains(ua, needle) {
				return m.family
			}
		}
	}
	return OSOther
}

// ClientIP picks the client address from proxy headers: the first entry of
// X-Forwarded-For, then X-Real-Ip, else empty. Values that are not an IP
// address are treated as absent.
func ClientIP(forwardedFor, realIP string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return NormalizeIP(first)
	}
	return NormalizeIP(realIP)
}

// NormalizeIP returns the canonical form of raw, accepting an optional port,
// or "" when raw is not an IP address.
func NormalizeIP(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if addr, err := netip.ParseAddr(raw); err == nil {
		return addr.WithZone("").Unmap().String()
	}
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return ap.Addr().WithZone("").Unmap().String()
	}
	return ""
}
