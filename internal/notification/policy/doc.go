// Package policy holds the pure delivery decisions: quiet-hours evaluation,
// channel routing, scheduling of delivery records and retry backoff.
//
// Nothing here performs I/O or reads the clock; callers pass now.
package policy
