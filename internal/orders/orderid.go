package orders

import (
	"fmt"
	"strings"
	"time"
)

// FormatOrderRef builds the human-readable order identifier
// {BRANCHCODE}-{YYYYMMDD}-{seq}, e.g. JKT01-20260901-0007.
func FormatOrderRef(branchCode string, at time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", strings.ToUpper(strings.TrimSpace(branchCode)), at.Format("20060102"), seq)
}

// dayWindow returns the local-day boundaries containing at, used to scope the
// per-branch daily sequence.
func dayWindow(at time.Time) (time.Time, time.Time) {
	start := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	return start, start.AddDate(0, 0, 1)
}
