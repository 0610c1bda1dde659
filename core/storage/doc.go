// Package storage provides the object-storage client used to archive export
// snapshots and memory-table backups after a successful run.
//
// Archiving is optional: with no endpoint configured the export step skips
// the upload entirely. The Client interface covers only the operations the
// archive step needs; tests substitute the mock in mocks/.
package storage
