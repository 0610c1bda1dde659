package unify

import (
	"strconv"
	"strings"

	"catalog-unifier/core/arbiter"
	"catalog-unifier/core/memory"

	"go.uber.org/zap"
)

// MergeEngine collapses resolved drafts that share a canonical name into one
// product per identity. Scalar disagreements between contributing records go
// to arbitration, and the verdict is learned for every contributing raw key
// so the same conflict never resurfaces.
type MergeEngine struct {
	store      *memory.Store
	arb        arbiter.Arbiter
	language   string
	houseBrand string
	logger     *zap.Logger
}

// NewMergeEngine creates a merge engine.
func NewMergeEngine(store *memory.Store, arb arbiter.Arbiter, language, houseBrand string, logger *zap.Logger) *MergeEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MergeEngine{store: store, arb: arb, language: language, houseBrand: houseBrand, logger: logger}
}

// fieldSpec binds one mergeable scalar field to its memory table.
type fieldSpec struct {
	label   string
	concept memory.Concept
	get     func(DraftProduct) string
	set     func(*CanonicalProduct, string)
}

func mergeFields() []fieldSpec {
	return []fieldSpec{
		{"product type", memory.ConceptProductType,
			func(d DraftProduct) string { return d.Type },
			func(p *CanonicalProduct, v string) { p.Type = v }},
		{"brand", memory.ConceptProductBrand,
			func(d DraftProduct) string { return d.Brand },
			func(p *CanonicalProduct, v string) { p.Brand = v }},
		{"model", memory.ConceptProductModel,
			func(d DraftProduct) string { return d.Model },
			func(p *CanonicalProduct, v string) { p.Model = v }},
		{"category", memory.ConceptCategory,
			func(d DraftProduct) string { return d.Category },
			func(p *CanonicalProduct, v string) { p.Category = v }},
		{"description", memory.ConceptDescription,
			func(d DraftProduct) string { return d.Raw.Description },
			func(p *CanonicalProduct, v string) { p.Description = v }},
		{"short description", memory.ConceptShortDescription,
			func(d DraftProduct) string { return d.Raw.ShortDescription },
			func(p *CanonicalProduct, v string) { p.ShortDescription = v }},
	}
}

// Merge groups drafts by canonical name, in first-appearance order, and
// collapses each group into one product. Variants are concatenated and
// deduplicated by attribute fingerprint, provenance is unioned, and prices
// take the maximum parseable value.
func (m *MergeEngine) Merge(drafts []DraftProduct) ([]CanonicalProduct, error) {
	var order []string
	groups := make(map[string][]DraftProduct)
	for _, d := range drafts {
		if _, seen := groups[d.Name]; !seen {
			order = append(order, d.Name)
		}
		groups[d.Name] = append(groups[d.Name], d)
	}

	products := make([]CanonicalProduct, 0, len(order))
	for _, name := range order {
		group := groups[name]
		p, err := m.mergeGroup(name, group)
		if err != nil {
			// Failures stay local to the group; the rest of the catalog
			// still merges.
			urls := make([]string, 0, len(group))
			for _, d := range group {
				urls = append(urls, d.Raw.URL)
			}
			m.logger.Error("Skipping product group, merge failed",
				zap.String("product", name),
				zap.Strings("urls", urls),
				zap.Error(err))
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (m *MergeEngine) mergeGroup(name string, group []DraftProduct) (CanonicalProduct, error) {
	p := CanonicalProduct{Name: name}

	for _, f := range mergeFields() {
		v, err := m.mergeField(f, name, group)
		if err != nil {
			return CanonicalProduct{}, err
		}
		f.set(&p, v)
	}

	for _, d := range group {
		p.OriginalNames = appendUnique(p.OriginalNames, d.Raw.Name)
		p.SourceURLs = appendUnique(p.SourceURLs, d.Raw.URL)
	}

	p.Variants = mergeVariants(group)
	for _, v := range p.Variants {
		if price, ok := ParsePrice(v.Price); ok && price > p.Price {
			p.Price = price
		}
		if list, ok := ParsePrice(v.ListPrice); ok && list > p.ListPrice {
			p.ListPrice = list
		}
	}

	// Scalar merging can settle a type, brand, or model the drafts disagreed
	// on; once all three are known the display name is recomposed from the
	// settled identity.
	if p.Type != "" && p.Brand != "" && p.Model != "" {
		composed := ComposeName(p.Type, p.Brand, p.Model, m.houseBrand)
		if composed != "" && composed != p.Name {
			p.Name = composed
			id := memory.TableID{Concept: memory.ConceptName, Language: m.language}
			for _, d := range group {
				if err := m.store.Set(id, d.Raw.Name, composed); err != nil {
					return CanonicalProduct{}, err
				}
			}
		}
	}
	return p, nil
}

// mergeField collapses one scalar field across a group. Empty values never
// conflict; a single distinct non-empty value wins outright. A genuine
// disagreement is arbitrated and the verdict written back for every
// contributing raw key.
func (m *MergeEngine) mergeField(f fieldSpec, name string, group []DraftProduct) (string, error) {
	type provenance struct {
		value string
		draft DraftProduct
	}
	var distinct []provenance
	for _, d := range group {
		v := strings.TrimSpace(f.get(d))
		if v == "" {
			continue
		}
		dup := false
		for _, seen := range distinct {
			if strings.EqualFold(seen.value, v) {
				dup = true
				break
			}
		}
		if !dup {
			distinct = append(distinct, provenance{value: v, draft: d})
		}
	}

	switch len(distinct) {
	case 0:
		return "", nil
	case 1:
		return distinct[0].value, nil
	}

	candidates := make([]arbiter.Candidate, 0, len(distinct))
	for _, c := range distinct {
		candidates = append(candidates, arbiter.Candidate{
			Value:     c.value,
			RawKey:    c.draft.Raw.Name,
			SourceURL: c.draft.Raw.URL,
		})
	}
	answer, err := m.arb.Ask(arbiter.Question{
		Field:       f.label,
		ProductName: name,
		Candidates:  candidates,
		Proposal:    distinct[0].value,
	})
	if err != nil {
		return "", err
	}
	if answer.Kind == arbiter.Unresolved {
		m.logger.Warn("Merge conflict left unresolved, first value kept",
			zap.String("field", f.label),
			zap.String("product", name),
			zap.String("kept", distinct[0].value))
		return distinct[0].value, nil
	}

	id := memory.TableID{Concept: f.concept, Language: m.language}
	for _, d := range group {
		if err := m.store.Set(id, d.Raw.Name, answer.Value); err != nil {
			return "", err
		}
	}
	return answer.Value, nil
}

// mergeVariants concatenates the groups' variants and drops duplicates. Two
// variants are the same when their attribute fingerprints, normalized
// prices, and stock status all agree.
func mergeVariants(group []DraftProduct) []CanonicalVariant {
	var out []CanonicalVariant
	seen := make(map[string]struct{})
	for _, d := range group {
		for _, v := range d.Variants {
			key := variantKey(v)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func variantKey(v CanonicalVariant) string {
	return AttributeKey(v.Attributes) + "\x00" +
		normalizePrice(v.Price) + "\x00" +
		normalizePrice(v.ListPrice) + "\x00" +
		normalizeToken(v.StockStatus)
}

func normalizePrice(s string) string {
	if v, ok := ParsePrice(s); ok {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return normalizeToken(s)
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, have := range list {
		if have == v {
			return list
		}
	}
	return append(list, v)
}
