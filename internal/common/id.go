package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID generates a unique record identifier: unix milliseconds plus a
// short random suffix. Collision-resistant enough for a single-user
// ledger, not cryptographically secure.
func NewID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
}

// Now returns the current time truncated to whole seconds, matching the
// precision persisted in RFC 3339 timestamps.
func Now() time.Time {
	return time.Now().Truncate(time.Second)
}
