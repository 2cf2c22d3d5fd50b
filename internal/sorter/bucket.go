package sorter

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// BucketLayout selects how destination folders are named.
type BucketLayout string

const (
	// LayoutMonth names buckets "Jan".."Dec". Files from different years share a bucket.
	LayoutMonth BucketLayout = "month"
	// LayoutYearMonth nests the month bucket under the year, e.g. "2024/Mar".
	LayoutYearMonth BucketLayout = "year-month"
)

// ParseBucketLayout validates a layout name. The empty string means LayoutMonth.
func ParseBucketLayout(s string) (BucketLayout, error) {
	switch BucketLayout(s) {
	case "", LayoutMonth:
		return LayoutMonth, nil
	case LayoutYearMonth:
		return LayoutYearMonth, nil
	default:
		return "", fmt.Errorf("unknown bucket layout: %q", s)
	}
}

// BucketName returns the bucket path, relative to the watched directory, for a pass run at t.
func BucketName(layout BucketLayout, t time.Time) string {
	month := t.Format("Jan")
	if layout == LayoutYearMonth {
		return filepath.Join(strconv.Itoa(t.Year()), month)
	}
	return month
}
