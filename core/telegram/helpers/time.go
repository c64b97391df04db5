package helpers

import "time"

// StampLayout renders notification timestamps, e.g. "17.10.2026 14:05".
const StampLayout = "02.01.2006 15:04"

// FormatStamp renders t in loc using StampLayout. A nil loc means UTC.
func FormatStamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(StampLayout)
}
