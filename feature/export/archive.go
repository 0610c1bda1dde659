package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"catalog-unifier/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archiver uploads the export snapshot and the memory-table backups to
// object storage, under a per-run prefix.
type Archiver struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewArchiver creates an archiver for the given bucket.
func NewArchiver(client storage.Client, bucket string, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{client: client, bucket: bucket, logger: logger}
}

// Archive uploads every CSV and YAML file under exportDir plus the memory
// tables and their backups under memoryRoot. Files land under
// "<runID>/export/…" and "<runID>/memory/…" in the bucket.
func (a *Archiver) Archive(ctx context.Context, runID, exportDir, memoryRoot string) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check archive bucket: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create archive bucket: %w", err)
		}
	}

	uploaded := 0
	for _, dir := range []struct{ path, prefix string }{
		{exportDir, runID + "/export"},
		{memoryRoot, runID + "/memory"},
	} {
		n, err := a.uploadDir(ctx, dir.path, dir.prefix)
		if err != nil {
			return err
		}
		uploaded += n
	}

	a.logger.Info("Archive uploaded",
		zap.String("bucket", a.bucket),
		zap.String("run", runID),
		zap.Int("files", uploaded))
	return nil
}

func (a *Archiver) uploadDir(ctx context.Context, dir, prefix string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	uploaded := 0
	for _, e := range entries {
		if e.IsDir() || !archivable(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		f, err := os.Open(path)
		if err != nil {
			return uploaded, err
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return uploaded, err
		}
		object := prefix + "/" + e.Name()
		_, err = a.client.PutObject(ctx, a.bucket, object, f, info.Size(), minio.PutObjectOptions{
			ContentType: contentType(e.Name()),
		})
		f.Close()
		if err != nil {
			return uploaded, fmt.Errorf("failed to upload %s: %w", object, err)
		}
		uploaded++
	}
	return uploaded, nil
}

// archivable keeps the snapshot, report, and table files including their
// timestamped backups, and skips temp files.
func archivable(name string) bool {
	if strings.HasSuffix(name, ".tmp") {
		return false
	}
	return strings.HasSuffix(name, ".csv") ||
		strings.HasSuffix(name, ".csv_old") ||
		strings.HasSuffix(name, ".yaml")
}

func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".yaml"):
		return "application/yaml"
	default:
		return "text/csv"
	}
}

// RunID returns the timestamped identifier archives are grouped under.
func RunID(now time.Time) string {
	return now.Format("2006-01-02_15-04-05")
}
