package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newBusinessNo builds a unique human-readable record number like
// "V-20260830-1A2B3C4D". Uniqueness ultimately rests on the column's
// unique index; the uuid suffix makes collisions practically impossible
// without a counter round-trip.
func newBusinessNo(prefix string, at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), suffix)
}
