package model

import "time"

// TimestampLayout renders UTC times with millisecond precision, e.g. 2024-01-02T03:04:05.678Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
