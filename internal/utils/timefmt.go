package utils

import (
	"time"
)

const fileStampLayout = "20060102_150405"

// FormatFileStamp returns value in the local time zone formatted for use inside file names.
func FormatFileStamp(value time.Time) string {
	return value.In(time.Local).Format(fileStampLayout)
}
