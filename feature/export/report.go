package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"catalog-unifier/core/catalog"
	"catalog-unifier/feature/unify"

	"gopkg.in/yaml.v3"
)

// CodeChange records a product whose identity survived but whose code moved.
type CodeChange struct {
	Name    string `yaml:"name"`
	OldCode string `yaml:"old_code"`
	NewCode string `yaml:"new_code"`
}

// PriceChange records a product whose price moved between runs.
type PriceChange struct {
	Code     string  `yaml:"code"`
	Name     string  `yaml:"name"`
	OldPrice float64 `yaml:"old_price"`
	NewPrice float64 `yaml:"new_price"`
}

// Report is the run-over-run comparison against the prior catalog.
type Report struct {
	New         []string      `yaml:"new_products"`
	Disappeared []string      `yaml:"disappeared_products"`
	CodeChanges []CodeChange  `yaml:"code_changes"`
	Increases   []PriceChange `yaml:"price_increases"`
	Decreases   []PriceChange `yaml:"price_decreases"`
}

// BuildReport diffs the new catalog against the prior one. Products match by
// code for price comparison; code changes are detected by name.
func BuildReport(prior []catalog.Product, current []unify.CanonicalProduct) Report {
	var rep Report

	priorByCode := make(map[string]catalog.Product, len(prior))
	priorByName := make(map[string]catalog.Product, len(prior))
	for _, p := range prior {
		priorByCode[p.Code] = p
		priorByName[normalizeName(p.Name)] = p
	}
	currentCodes := make(map[string]struct{}, len(current))

	for _, p := range current {
		currentCodes[p.Code] = struct{}{}
		old, known := priorByCode[p.Code]
		if !known {
			rep.New = append(rep.New, fmt.Sprintf("%s %s", p.Code, p.Name))
			if prev, ok := priorByName[normalizeName(p.Name)]; ok {
				rep.CodeChanges = append(rep.CodeChanges, CodeChange{
					Name:    p.Name,
					OldCode: prev.Code,
					NewCode: p.Code,
				})
			}
			continue
		}
		change := PriceChange{Code: p.Code, Name: p.Name, OldPrice: old.Price, NewPrice: p.Price}
		switch {
		case p.Price > old.Price:
			rep.Increases = append(rep.Increases, change)
		case p.Price < old.Price:
			rep.Decreases = append(rep.Decreases, change)
		}
	}

	for _, p := range prior {
		if _, ok := currentCodes[p.Code]; !ok {
			rep.Disappeared = append(rep.Disappeared, fmt.Sprintf("%s %s", p.Code, p.Name))
		}
	}
	return rep
}

// Empty reports whether the runs are identical, code- and price-wise.
func (r Report) Empty() bool {
	return len(r.New) == 0 && len(r.Disappeared) == 0 && len(r.CodeChanges) == 0 &&
		len(r.Increases) == 0 && len(r.Decreases) == 0
}

// WriteReport writes the report as YAML into the export dir and returns its
// path.
func (e *Exporter) WriteReport(rep Report) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	raw, err := yaml.Marshal(rep)
	if err != nil {
		return "", err
	}
	path := filepath.Join(e.dir, "report.yaml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
