package memory

import "sort"

// Concept identifies one normalization concept with its own memory table.
type Concept string

const (
	ConceptName             Concept = "Name"
	ConceptProductBrand     Concept = "ProductBrand"
	ConceptProductType      Concept = "ProductType"
	ConceptProductModel     Concept = "ProductModel"
	ConceptCategory         Concept = "Category"
	ConceptDescription      Concept = "Desc"
	ConceptShortDescription Concept = "ShortDesc"
	ConceptVariantName      Concept = "VariantName"
	ConceptVariantValue     Concept = "VariantValue"
	ConceptStockStatus      Concept = "StockStatus"

	// Language-independent lookup tables consumed by the code allocator.
	ConceptBrandCodes       Concept = "BrandCodeList"
	ConceptCategoryCodes    Concept = "CategoryCodeList"
	ConceptSubcategoryCodes Concept = "CategorySubCodeList"
)

// TableID identifies one memory table: a concept in a language. Lookup
// tables that are the same for every language leave Language empty.
type TableID struct {
	Concept  Concept
	Language string
}

// FileName returns the file name of the table inside the store root,
// e.g. "ProductBrandMemory_CS.csv" or "BrandCodeList.csv".
func (id TableID) FileName() string {
	if id.Language == "" {
		return string(id.Concept) + ".csv"
	}
	return string(id.Concept) + "Memory_" + id.Language + ".csv"
}

func (id TableID) String() string {
	if id.Language == "" {
		return string(id.Concept)
	}
	return string(id.Concept) + "_" + id.Language
}

// Table is one cached key→value memory table. Keys are unique within a table.
type Table struct {
	id      TableID
	entries map[string]string
	dirty   bool
}

func newTable(id TableID, entries map[string]string) *Table {
	if entries == nil {
		entries = make(map[string]string)
	}
	return &Table{id: id, entries: entries}
}

// ID returns the table identity.
func (t *Table) ID() TableID { return t.id }

// Get returns the resolved value for a source key.
func (t *Table) Get(key string) (string, bool) {
	v, ok := t.entries[key]
	return v, ok
}

// Set stores a resolved value for a source key and marks the table dirty.
func (t *Table) Set(key, value string) {
	if existing, ok := t.entries[key]; ok && existing == value {
		return
	}
	t.entries[key] = value
	t.dirty = true
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Dirty reports whether the table has unsaved writes.
func (t *Table) Dirty() bool { return t.dirty }

// Values returns the distinct resolved values of the table, sorted, suitable
// as a vocabulary for heuristic extraction.
func (t *Table) Values() []string {
	seen := make(map[string]struct{}, len(t.entries))
	values := make([]string, 0, len(t.entries))
	for _, v := range t.entries {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Entries returns a copy of the table contents, sorted by key. Used for
// oracle consistency examples and for persistence.
func (t *Table) Entries() []Entry {
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Value: t.entries[k]})
	}
	return entries
}

// Entry is one source key → resolved value pair.
type Entry struct {
	Key   string
	Value string
}
