// Package table holds the process-wide set of compiled linkifiers and
// swaps it atomically when rule definitions change.
//
// The table is rebuilt wholesale: Update compiles the full definition
// list aside and publishes the result with a single pointer swap, so
// concurrent readers observe either the previous complete table or the
// new complete table, never a partial rebuild. Definitions that fail
// to compile are dropped and reported, one report per rule; Update
// itself never fails. One administrator's typo must not take down
// linkification for everyone else's rules, so the worst case of an
// all-broken definition list is an empty table, not an error.
//
// Readers take the current snapshot with Get and hold it for one scan
// pass at most. The slice is shared, not copied; callers never mutate
// it and never retain it across the next Update.
//
// Failure reporting goes through the Reporter interface. Reports are
// fire-and-forget: a reporter that panics does not disturb the rebuild.
package table
