// Package throttle provides the daily, tier-based rate limit for the two
// high-frequency AI features (chat messages and photo analyses).
//
// The throttle is independent of the monthly quota: a user under their
// monthly budget can still be denied by the daily ceiling. Its limit table
// keys on tier only, and premium users remain subject to it with a high
// ceiling.
//
// Counters are keyed by user, feature, and UTC calendar day. Rollover is
// lazy: a counter from a previous day reads as zero and the Redis backend
// lets stale keys expire on their own.
package throttle
