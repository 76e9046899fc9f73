// Package filelock provides the cross-process advisory lock that serializes
// merges into a destination root.
//
// The lock is flock(2) on a zero-byte marker file. It coordinates only
// cooperating processes that take the same lock; it does not protect against
// arbitrary writers.
package filelock
