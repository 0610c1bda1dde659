package unify

import (
	"fmt"
	"strconv"
	"strings"

	"catalog-unifier/core/catalog"
	"catalog-unifier/core/memory"
)

const (
	// defaultBrandSegment is the code segment used when a brand has no entry
	// in the brand code table.
	defaultBrandSegment = "DES"
	defaultGroupSegment = "00"

	brandSegmentLen = 3
	groupSegmentLen = 2
	prefixLen       = brandSegmentLen + 2*groupSegmentLen

	maxProductSequence = 9999
	maxVariantSequence = 99
)

// AllocationExhaustedError reports that a code prefix has no free sequence
// numbers left.
type AllocationExhaustedError struct {
	Prefix string
	Limit  int
}

func (e *AllocationExhaustedError) Error() string {
	return fmt.Sprintf("code prefix %q exhausted, all %d sequence numbers in use", e.Prefix, e.Limit)
}

// Allocator hands out product and variant codes. A code is the brand
// segment, a category pair, and a running sequence: "DES01020001", with
// variants suffixed "-01". Allocation is deterministic: a product seen in
// the prior catalog keeps its code, a new product takes the smallest free
// sequence under its prefix, and no code is ever issued twice.
type Allocator struct {
	store *memory.Store

	used   map[string]map[int]struct{}
	byName map[string]string

	variantByAttr map[string]map[string]string
	variantUsed   map[string]map[int]struct{}
}

// NewAllocator builds an allocator seeded with every code the prior catalog
// already holds.
func NewAllocator(store *memory.Store, prior []catalog.Product) *Allocator {
	a := &Allocator{
		store:         store,
		used:          make(map[string]map[int]struct{}),
		byName:        make(map[string]string),
		variantByAttr: make(map[string]map[string]string),
		variantUsed:   make(map[string]map[int]struct{}),
	}
	for _, p := range prior {
		a.reserve(p.Code)
		if p.Name != "" {
			a.byName[normalizeToken(p.Name)] = p.Code
		}
		for _, v := range p.Variants {
			a.reserveVariant(p.Code, v.Code, v.AttributeKey)
		}
	}
	return a
}

func (a *Allocator) reserve(code string) {
	if len(code) != prefixLen+4 {
		return
	}
	seq, err := strconv.Atoi(code[prefixLen:])
	if err != nil {
		return
	}
	prefix := code[:prefixLen]
	if a.used[prefix] == nil {
		a.used[prefix] = make(map[int]struct{})
	}
	a.used[prefix][seq] = struct{}{}
}

func (a *Allocator) reserveVariant(productCode, variantCode, attrKey string) {
	suffix, ok := strings.CutPrefix(variantCode, productCode+"-")
	if !ok {
		return
	}
	seq, err := strconv.Atoi(suffix)
	if err != nil {
		return
	}
	if a.variantUsed[productCode] == nil {
		a.variantUsed[productCode] = make(map[int]struct{})
	}
	a.variantUsed[productCode][seq] = struct{}{}
	if attrKey != "" {
		if a.variantByAttr[productCode] == nil {
			a.variantByAttr[productCode] = make(map[string]string)
		}
		a.variantByAttr[productCode][attrKey] = variantCode
	}
}

// Allocate returns the code for a product. A name already known from the
// prior catalog keeps its code unchanged; otherwise the smallest unused
// sequence under the product's prefix is issued and reserved.
func (a *Allocator) Allocate(p CanonicalProduct) (string, error) {
	if code, ok := a.byName[normalizeToken(p.Name)]; ok {
		return code, nil
	}

	prefix, err := a.prefixFor(p)
	if err != nil {
		return "", err
	}
	if a.used[prefix] == nil {
		a.used[prefix] = make(map[int]struct{})
	}
	for seq := 1; seq <= maxProductSequence; seq++ {
		if _, taken := a.used[prefix][seq]; taken {
			continue
		}
		a.used[prefix][seq] = struct{}{}
		code := fmt.Sprintf("%s%04d", prefix, seq)
		a.byName[normalizeToken(p.Name)] = code
		return code, nil
	}
	return "", &AllocationExhaustedError{Prefix: prefix, Limit: maxProductSequence}
}

// AllocateVariant returns the code for one variant of an allocated product.
// A variant whose attribute fingerprint is already known under the product
// keeps its code; otherwise the smallest unused two-digit suffix is issued.
func (a *Allocator) AllocateVariant(productCode string, v CanonicalVariant) (string, error) {
	attrKey := AttributeKey(v.Attributes)
	if code, ok := a.variantByAttr[productCode][attrKey]; ok {
		return code, nil
	}
	if a.variantUsed[productCode] == nil {
		a.variantUsed[productCode] = make(map[int]struct{})
	}
	for seq := 1; seq <= maxVariantSequence; seq++ {
		if _, taken := a.variantUsed[productCode][seq]; taken {
			continue
		}
		a.variantUsed[productCode][seq] = struct{}{}
		code := fmt.Sprintf("%s-%02d", productCode, seq)
		if a.variantByAttr[productCode] == nil {
			a.variantByAttr[productCode] = make(map[string]string)
		}
		a.variantByAttr[productCode][attrKey] = code
		return code, nil
	}
	return "", &AllocationExhaustedError{Prefix: productCode + "-", Limit: maxVariantSequence}
}

// prefixFor derives the seven-character code prefix from the product's
// brand and category via the code lookup tables. Unknown brands fall back to
// the house segment, unknown categories to "00".
func (a *Allocator) prefixFor(p CanonicalProduct) (string, error) {
	brandSeg, err := a.lookupSegment(memory.ConceptBrandCodes, p.Brand, defaultBrandSegment, brandSegmentLen)
	if err != nil {
		return "", err
	}

	category, subcategory := splitCategory(p.Category)
	catSeg, err := a.lookupSegment(memory.ConceptCategoryCodes, category, defaultGroupSegment, groupSegmentLen)
	if err != nil {
		return "", err
	}
	subSeg, err := a.lookupSegment(memory.ConceptSubcategoryCodes, subcategory, defaultGroupSegment, groupSegmentLen)
	if err != nil {
		return "", err
	}
	return brandSeg + catSeg + subSeg, nil
}

func (a *Allocator) lookupSegment(concept memory.Concept, key, fallback string, width int) (string, error) {
	if key == "" {
		return fallback, nil
	}
	// Code tables carry no language suffix; segments are shared across runs.
	v, ok, err := a.store.Get(memory.TableID{Concept: concept}, key)
	if err != nil {
		return "", err
	}
	if !ok || v == "" {
		return fallback, nil
	}
	return padSegment(strings.ToUpper(v), width), nil
}

// padSegment forces a code segment to its exact width: long values are
// truncated, short ones zero-padded on the left.
func padSegment(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// splitCategory splits "Category > Subcategory" style paths; a flat category
// has no subcategory segment.
func splitCategory(s string) (category, subcategory string) {
	for _, sep := range []string{">", "/"} {
		if before, after, found := strings.Cut(s, sep); found {
			return strings.TrimSpace(before), strings.TrimSpace(after)
		}
	}
	return strings.TrimSpace(s), ""
}
