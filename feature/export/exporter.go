package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"catalog-unifier/feature/unify"

	"go.uber.org/zap"
)

const backupTimeLayout = "2006-01-02_15-04-05"

var productHeader = []string{
	"code", "name", "type", "brand", "model", "category",
	"price", "list_price", "description", "short_description",
	"original_names", "source_urls",
}

var variantHeader = []string{
	"product_code", "code", "attributes", "price", "list_price", "stock_status",
}

// Exporter writes catalog snapshots into the export directory. An existing
// snapshot is backed up with a timestamp suffix before it is replaced, and
// every write goes through a temp file and rename.
type Exporter struct {
	dir    string
	logger *zap.Logger
}

// NewExporter creates an exporter rooted at dir.
func NewExporter(dir string, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{dir: dir, logger: logger}
}

// WriteSnapshot writes the product and variant CSV files for the given
// catalog and returns the paths written.
func (e *Exporter) WriteSnapshot(products []unify.CanonicalProduct) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export dir: %w", err)
	}

	productRows := make([][]string, 0, len(products))
	var variantRows [][]string
	for _, p := range products {
		productRows = append(productRows, []string{
			p.Code, p.Name, p.Type, p.Brand, p.Model, p.Category,
			formatPrice(p.Price), formatPrice(p.ListPrice),
			p.Description, p.ShortDescription,
			strings.Join(p.OriginalNames, " | "),
			strings.Join(p.SourceURLs, " | "),
		})
		for _, v := range p.Variants {
			variantRows = append(variantRows, []string{
				p.Code, v.Code, unify.AttributeDisplay(v.Attributes),
				v.Price, v.ListPrice, v.StockStatus,
			})
		}
	}

	productsPath := filepath.Join(e.dir, "products.csv")
	if err := writeCSV(productsPath, productHeader, productRows); err != nil {
		return nil, err
	}
	variantsPath := filepath.Join(e.dir, "variants.csv")
	if err := writeCSV(variantsPath, variantHeader, variantRows); err != nil {
		return nil, err
	}

	e.logger.Info("Catalog snapshot written",
		zap.Int("products", len(productRows)),
		zap.Int("variants", len(variantRows)),
		zap.String("dir", e.dir))
	return []string{productsPath, variantsPath}, nil
}

func formatPrice(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// writeCSV replaces path atomically, preserving any previous version as a
// timestamped backup next to it.
func writeCSV(path string, header []string, rows [][]string) error {
	if _, err := os.Stat(path); err == nil {
		backup := fmt.Sprintf("%s.%s.csv_old", path, time.Now().Format(backupTimeLayout))
		if err := copyFile(path, backup); err != nil {
			return fmt.Errorf("failed to back up %s: %w", path, err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
