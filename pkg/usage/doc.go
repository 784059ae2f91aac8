// Package usage owns the per-user usage counters: monthly quota counters
// that reset lazily on calendar-month rollover, and absolute counters that
// track currently owned resources.
//
// The rollover is read-triggered, not timer-driven: GetOrCreate zeroes the
// monthly counters the first time the record is touched after the month
// changes. The document-backed store applies the reset as a single
// conditional update so concurrent readers cannot double-reset.
//
// All counter mutations are atomic deltas against the persisted value;
// decrements floor at zero. Calendar comparisons use UTC.
package usage
