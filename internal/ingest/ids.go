package ingest

import (
	"time"

	"github.com/google/uuid"
)

var activityNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/joshdurbin/fitness-wrapped/activity"))

// derivedID returns a stable ID for a record without a provider ID. The
// same file name, start time and type always give the same ID, so
// re-importing a file replaces its rows instead of duplicating them.
func derivedID(source string, start time.Time, rawType string) string {
	name := source + "|" + start.UTC().Format(time.RFC3339Nano) + "|" + rawType
	return uuid.NewSHA1(activityNamespace, []byte(name)).String()
}
