package report

import (
	"time"

	"github.com/google/uuid"
)

// idTimeLayout prefixes report IDs so artifacts sort chronologically.
const idTimeLayout = "20060102T150405Z"

// NewID returns a report ID for a crash observed at t. IDs are unique per
// report and safe to use in file names.
func NewID(t time.Time) string {
	return t.UTC().Format(idTimeLayout) + "-" + uuid.NewString()[:8]
}
