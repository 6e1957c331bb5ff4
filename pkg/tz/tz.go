package tz

import "time"

// Resolve loads the named IANA location. An empty or unknown name yields UTC.
func Resolve(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
