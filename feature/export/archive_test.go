package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"catalog-unifier/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestArchiveUploadsSnapshotAndBackups(t *testing.T) {
	exportDir := t.TempDir()
	memoryRoot := t.TempDir()
	for _, f := range []struct{ dir, name string }{
		{exportDir, "products.csv"},
		{exportDir, "report.yaml"},
		{exportDir, "products.csv.tmp"},
		{memoryRoot, "ProductBrandMemory_EN.csv"},
		{memoryRoot, "ProductBrandMemory_EN.csv.2026-01-02_10-00-00.csv_old"},
	} {
		require.NoError(t, os.WriteFile(filepath.Join(f.dir, f.name), []byte("data"), 0o644))
	}

	client := &mocks.Client{}
	client.On("BucketExists", mock.Anything, "catalog-archive").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "catalog-archive", mock.Anything).Return(nil)
	client.On("PutObject", mock.Anything, "catalog-archive", mock.Anything, mock.Anything, int64(4), mock.Anything).
		Return(minio.UploadInfo{}, nil)

	a := NewArchiver(client, "catalog-archive", zap.NewNop())
	require.NoError(t, a.Archive(context.Background(), "2026-01-02_10-00-00", exportDir, memoryRoot))

	// Everything except the temp file goes up.
	client.AssertNumberOfCalls(t, "PutObject", 4)
	client.AssertCalled(t, "MakeBucket", mock.Anything, "catalog-archive", mock.Anything)

	var objects []string
	for _, call := range client.Calls {
		if call.Method == "PutObject" {
			objects = append(objects, call.Arguments.String(2))
		}
	}
	assert.Contains(t, objects, "2026-01-02_10-00-00/export/products.csv")
	assert.Contains(t, objects, "2026-01-02_10-00-00/memory/ProductBrandMemory_EN.csv.2026-01-02_10-00-00.csv_old")
}

func TestArchiveSkipsMissingMemoryRoot(t *testing.T) {
	exportDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(exportDir, "products.csv"), []byte("data"), 0o644))

	client := &mocks.Client{}
	client.On("BucketExists", mock.Anything, "catalog-archive").Return(true, nil)
	client.On("PutObject", mock.Anything, "catalog-archive", mock.Anything, mock.Anything, int64(4), mock.Anything).
		Return(minio.UploadInfo{}, nil)

	a := NewArchiver(client, "catalog-archive", zap.NewNop())
	require.NoError(t, a.Archive(context.Background(), "run", exportDir, filepath.Join(exportDir, "missing")))

	client.AssertNumberOfCalls(t, "PutObject", 1)
	client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}
