package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"catalog-unifier/feature/unify"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// resultFile is one source's scrape output as stored in the results dir.
type resultFile struct {
	Source    string                   `json:"source"`
	URL       string                   `json:"url"`
	ScrapedAt time.Time                `json:"scraped_at"`
	Records   []unify.RawProductRecord `json:"records"`
}

// Runner executes scraper worker processes in parallel and collects their
// output into per-source result files. Worker failures are per-source: the
// failing source is logged and excluded, the run continues.
type Runner struct {
	resultsDir string
	workers    int
	logger     *zap.Logger
}

// NewRunner creates a runner writing into resultsDir with at most workers
// concurrent processes.
func NewRunner(resultsDir string, workers int, logger *zap.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{resultsDir: resultsDir, workers: workers, logger: logger}
}

// Run scrapes every source. It returns the number of sources that produced a
// result file. Cancellation kills each worker's whole process subtree;
// results already written stay on disk.
func (r *Runner) Run(ctx context.Context, sources []Source) (int, error) {
	if err := os.MkdirAll(r.resultsDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create results dir: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	done := make([]bool, len(sources))
	for i, src := range sources {
		g.Go(func() error {
			if err := r.runSource(ctx, src); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.logger.Error("Source scrape failed",
					zap.String("source", src.Name),
					zap.Error(err))
				return nil
			}
			done[i] = true
			return nil
		})
	}
	err := g.Wait()

	ok := 0
	for _, d := range done {
		if d {
			ok++
		}
	}
	return ok, err
}

func (r *Runner) runSource(ctx context.Context, src Source) error {
	started := time.Now()
	r.logger.Info("Scraping source", zap.String("source", src.Name), zap.String("url", src.URL))

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(src.Command, src.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Own process group, so cancellation can take down the worker's children
	// (headless browsers and the like) along with the worker itself.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		<-waitErr
		return ctx.Err()
	case err := <-waitErr:
		if err != nil {
			return fmt.Errorf("worker failed: %w (stderr: %s)", err, truncate(stderr.String(), 500))
		}
	}

	var records []unify.RawProductRecord
	if err := json.Unmarshal(stdout.Bytes(), &records); err != nil {
		return fmt.Errorf("worker produced invalid JSON: %w", err)
	}

	out, err := json.MarshalIndent(resultFile{
		Source:    src.Name,
		URL:       src.URL,
		ScrapedAt: started,
		Records:   records,
	}, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(r.resultsDir, src.Name+".json")
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}

	r.logger.Info("Source scraped",
		zap.String("source", src.Name),
		zap.Int("records", len(records)),
		zap.Duration("took", time.Since(started)))
	return nil
}

// LoadResults reads every result file in dir, in file-name order, and
// returns the concatenated records. Records without their own URL inherit
// the source's URL so provenance is never lost.
func LoadResults(dir string) ([]unify.RawProductRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read results dir: %w", err)
	}
	var records []unify.RawProductRecord
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		var f resultFile
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("invalid result file %s: %w", e.Name(), err)
		}
		for _, rec := range f.Records {
			if rec.URL == "" {
				rec.URL = f.URL
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
