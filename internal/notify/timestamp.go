package notify

import "time"

// FormatCheckedAt renders the check instant as "MM/DD/YYYY hh:mmPM <label>"
// in the named IANA zone. When the zone database is unavailable the time
// falls back to a fixed UTC-6 offset. The configured label is printed
// literally either way; operators asked for a stable abbreviation rather
// than one that flips with daylight saving.
func FormatCheckedAt(t time.Time, zoneName, label string) string {
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		loc = time.FixedZone(label, -6*60*60)
	}
	return t.In(loc).Format("01/02/2006 03:04PM") + " " + label
}
