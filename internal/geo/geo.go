// Package geo resolves a visitor's country at record time. Raw IPs are
// discarded once the redirect is served, so resolution cannot be deferred to
// analytics reads.
package geo

import (
	"net/http"
	"strings"
)

// Geolocator maps a request to an ISO 3166-1 alpha-2 country code, or ""
// when the origin is unknown.
type Geolocator interface {
	Country(remoteIP string, header http.Header) string
}

// countryHeaders in lookup order. CDNs and edge proxies inject these.
var countryHeaders = []string{"CF-IPCountry", "X-Country-Code"}

type headerGeolocator struct{}

// NewHeaderGeolocator returns a Geolocator that trusts edge-provided country
// headers and resolves nothing itself.
func NewHeaderGeolocator() Geolocator {
	return headerGeolocator{}
}

func (headerGeolocator) Country(_ string, header http.Header) string {
	for _, name := range countryHeaders {
		v := strings.ToUpper(strings.TrimSpace(header.Get(name)))
		// XX and T1 are Cloudflare's sentinels for unknown/Tor origins.
		if v == "" || v == "XX" || v == "T1" {
			continue
		}
		if len(v) == 2 {
			return v
		}
	}
	return ""
}
