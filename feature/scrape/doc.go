// Package scrape runs external scraper workers and collects their output.
//
// Sources are declared in a YAML file; each names a worker command that
// prints a JSON array of raw product records to stdout. The runner executes
// workers in parallel with a bounded limit, gives each its own process group
// so cancellation reaps the whole subtree, and stores output as one JSON
// result file per source. A failing source is logged and skipped without
// aborting the run.
package scrape
