// Package throttle limits repeated login failures per account key within a
// configurable window.
package throttle
