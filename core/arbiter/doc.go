// Package arbiter abstracts the blocking console prompts the unification
// pipeline uses for human decisions: confirming oracle proposals, choosing
// between conflicting merge values, and supplying values nothing else could
// resolve.
//
// The Arbiter interface decouples the pipeline from the terminal. Production
// uses Console; tests use Scripted with prepared answers.
//
// Free-typed input is sanitized before it is accepted: a maximum length, no
// control characters, and no leading character a spreadsheet would treat as a
// formula when the value later ends up in a CSV export. Rejected input is
// re-prompted, never fatal.
package arbiter
