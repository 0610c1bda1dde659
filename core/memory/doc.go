// Package memory implements the persistent learned key→value tables that the
// unification pipeline consults and teaches.
//
// Each table maps a source key (raw text or an original product name) to a
// resolved value for one normalization concept (brand, type, model, category,
// variant name, stock status, ...) in one language. Tables live as two-column
// CSV files under a configured root directory.
//
// # Caching
//
// The Store keeps a bounded number of tables in memory. Loading a table bumps
// it to most-recently-used; when the cache is full the least-recently-used
// clean table is evicted. A table with unsaved writes is never evicted: if
// every cached table is dirty, the store grows past its capacity and logs a
// warning instead of losing learned values.
//
// # Durability
//
// Writes are deferred: Set only marks the cached table dirty. FlushAll
// persists every dirty table at the end of a run, writing to a temporary file
// and renaming it into place, with a timestamped backup of the previous
// version kept alongside. A crash before FlushAll discards the run's learned
// updates.
//
// # Concurrency
//
// The Store is not safe for concurrent mutation of the same table. The
// pipeline runs single-threaded and callers must serialize access.
package memory
