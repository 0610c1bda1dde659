package unify

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// maxAttributePairs bounds how many attribute pairs one variant can carry.
const maxAttributePairs = 3

// AttributePair is one variant attribute, e.g. {Name: "Color", Value: "Red"}.
type AttributePair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RawVariant is one variant exactly as a scraper produced it. Prices and
// stock status are raw text; normalization happens during resolution.
type RawVariant struct {
	Attributes []AttributePair `json:"attributes"`
	Price      string          `json:"price"`
	ListPrice  string          `json:"list_price"`
	StockText  string          `json:"stock_text"`
}

// NewRawVariant validates and constructs a raw variant. A variant holds an
// ordered list of at most three named attribute pairs.
func NewRawVariant(pairs []AttributePair, price, listPrice, stockText string) (RawVariant, error) {
	if len(pairs) > maxAttributePairs {
		return RawVariant{}, fmt.Errorf("variant has %d attribute pairs, at most %d allowed", len(pairs), maxAttributePairs)
	}
	for _, p := range pairs {
		if strings.TrimSpace(p.Name) == "" {
			return RawVariant{}, fmt.Errorf("variant attribute with empty name")
		}
	}
	return RawVariant{Attributes: pairs, Price: price, ListPrice: listPrice, StockText: stockText}, nil
}

// RawProductRecord is one scraped product record. It is produced by a source
// worker, consumed once, and never mutated.
type RawProductRecord struct {
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	ShortDescription string       `json:"short_description"`
	URL              string       `json:"url"`
	Variants         []RawVariant `json:"variants"`
}

// DraftProduct is one record after attribute resolution, ready for merging.
type DraftProduct struct {
	Raw RawProductRecord

	// Name is the resolved canonical name the record will group under.
	Name string

	Type     string
	Brand    string
	Model    string
	Category string

	Variants []CanonicalVariant
}

// CanonicalVariant is a normalized, deduplicated variant of a canonical
// product.
type CanonicalVariant struct {
	Attributes  []AttributePair
	Price       string
	ListPrice   string
	StockStatus string
	Code        string
}

// CanonicalProduct is a merged, deduplicated product with a resolved
// identity. It is created by the merge engine, given its code by the
// allocator, and terminal after export.
type CanonicalProduct struct {
	Name     string
	Type     string
	Brand    string
	Model    string
	Category string
	Code     string

	Description      string
	ShortDescription string

	// OriginalNames and SourceURLs are the order-preserving, deduplicated
	// provenance sets of the contributing records.
	OriginalNames []string
	SourceURLs    []string

	// Price and ListPrice are the maxima of the parseable contributing
	// variant prices.
	Price     float64
	ListPrice float64

	Variants []CanonicalVariant
}

// AttributeKey returns an order-independent fingerprint of an attribute-pair
// set: pairs are case/whitespace normalized, sorted, and joined. Two variants
// with the same pairs in different order produce the same key.
func AttributeKey(pairs []AttributePair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, normalizeToken(p.Name)+"="+normalizeToken(p.Value))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// AttributeDisplay returns the human-readable attribute listing in the
// variant's own order.
func AttributeDisplay(pairs []AttributePair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.Name+": "+p.Value)
	}
	return strings.Join(parts, ", ")
}

// normalizeToken lowercases and collapses all interior whitespace.
func normalizeToken(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ParsePrice parses a scraped price string. It tolerates currency symbols,
// thousands spaces (including non-breaking), and a decimal comma. Unparsable
// or empty input reports ok=false and is ignored by price merging.
func ParsePrice(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ComposeName builds the canonical display name "type brand model". The
// brand is skipped when empty or when it is the operator's own brand.
func ComposeName(productType, brand, model, houseBrand string) string {
	if brand == "" || strings.EqualFold(strings.TrimSpace(brand), houseBrand) {
		return strings.TrimSpace(strings.Join(strings.Fields(productType+" "+model), " "))
	}
	return strings.TrimSpace(strings.Join(strings.Fields(productType+" "+brand+" "+model), " "))
}
