// Package catalog persists the previously exported catalog that makes code
// allocation idempotent across runs.
//
// The unify pipeline loads the prior catalog before allocation, so a product
// that already had a code keeps it exactly, and replaces the stored catalog
// after a successful export. The `serve` command exposes the same data
// read-only over HTTP.
//
// Both sqlite (single-operator default) and mysql are supported, selected by
// configuration.
package catalog
