package sorter

import (
	"errors"
	"fmt"
	"time"
)

// RecordTimeLayout is the on-disk format of SortRecord.SortedDate.
const RecordTimeLayout = "2006-01-02 15:04:05"

// SortRecord is the persisted marker of the last completed sort pass.
type SortRecord struct {
	SortedDate time.Time
}

// ErrRecordNotFound is returned by CacheStore.Load when no record has been saved yet.
var ErrRecordNotFound = errors.New("sort record not found")

// ParseError reports stored content that is not a valid SortRecord.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing sort record %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsRecordUnavailable reports whether err means "treat as never sorted".
func IsRecordUnavailable(err error) bool {
	var pe *ParseError
	return errors.Is(err, ErrRecordNotFound) || errors.As(err, &pe)
}
