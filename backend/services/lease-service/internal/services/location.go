package services

import (
	"time"

	"github.com/bradfitz/latlong"

	"github.com/arrienda/mono-repo/backend/shared/go-models"
)

// loadLocation resolves an IANA zone name, falling back when it is empty
// or unknown.
func loadLocation(tz string, fallback *time.Location) *time.Location {
	if tz == "" {
		return fallback
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fallback
	}
	return loc
}

// PropertyTimeZone returns the property's zone name, deriving it from the
// coordinates when the listing did not record one.
func PropertyTimeZone(p *models.Property) string {
	if p == nil {
		return ""
	}
	if p.TimeZone != "" {
		return p.TimeZone
	}
	if p.Latitude == 0 && p.Longitude == 0 {
		return ""
	}
	return latlong.LookupZoneName(p.Latitude, p.Longitude)
}

// dateOnlyInLocation returns local midnight of the calendar day t falls
// on in loc.
func dateOnlyInLocation(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
