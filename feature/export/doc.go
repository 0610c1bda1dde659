// Package export persists the unified catalog at the end of a run.
//
// It writes the product and variant CSV snapshot (backing up the previous
// snapshot with a timestamp, writing through a temp file), builds a
// run-over-run report against the prior catalog (new, disappeared, code
// changes, price movements), and optionally archives the snapshot plus the
// memory-table backups to object storage.
package export
