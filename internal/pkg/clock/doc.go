// Package clock hides time.Now behind the Clocker interface so quiet hours,
// scheduling and retry deadlines can be evaluated against a fixed instant in tests.
package clock
