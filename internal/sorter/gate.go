package sorter

import "time"

// lastSecondOfDay is 23:59:59 as an offset from midnight.
const lastSecondOfDay = 23*time.Hour + 59*time.Minute + 59*time.Second

// IsDue reports whether a sort pass should run at now, given the time of the
// last completed pass. A zero lastSorted means no pass was ever recorded,
// which is always due.
//
// A pass is due only when now falls on a later calendar day than lastSorted,
// both read in now's location. A lastSorted stamped in the final second of
// its day never counts as due.
func IsDue(lastSorted, now time.Time) bool {
	if lastSorted.IsZero() {
		return true
	}
	last := lastSorted.In(now.Location())
	if !dayAfter(now, last) {
		return false
	}
	return timeOfDay(last) < lastSecondOfDay
}

// dayAfter reports whether a's calendar date is strictly after b's.
func dayAfter(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}

func timeOfDay(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}
