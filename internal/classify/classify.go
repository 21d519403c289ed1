// Package classify buckets user agents into the coarse browser/device
// categories the analytics breakdowns group by.
package classify

import (
	"strings"

	"github.com/mileusna/useragent"
)

// Classification is a coarse browser/device pair.
type Classification struct {
	Browser string
	Device  string
}

// Classifier maps a raw User-Agent header to a classification.
type Classifier interface {
	Classify(userAgent string) Classification
}

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
	Unknown       = "unknown"
)

type uaClassifier struct{}

// NewUAClassifier returns the default user-agent backed classifier.
func NewUAClassifier() Classifier {
	return uaClassifier{}
}

func (uaClassifier) Classify(rawUA string) Classification {
	if strings.TrimSpace(rawUA) == "" {
		return Classification{Browser: Unknown, Device: Unknown}
	}

	ua := useragent.Parse(rawUA)

	browser := strings.ToLower(ua.Name)
	if browser == "" {
		browser = Unknown
	}

	var device string
	switch {
	case ua.Bot:
		device = DeviceBot
	case ua.Mobile:
		device = DeviceMobile
	case ua.Tablet:
		device = DeviceTablet
	case ua.Desktop:
		device = DeviceDesktop
	default:
		device = Unknown
	}

	return Classification{Browser: browser, Device: device}
}
