package unify

import (
	"errors"
	"fmt"
	"testing"

	"catalog-unifier/core/catalog"
	"catalog-unifier/core/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCodeTables(t *testing.T, store *memory.Store) {
	t.Helper()
	require.NoError(t, store.Set(memory.TableID{Concept: memory.ConceptBrandCodes}, "Butterfly", "BUT"))
	require.NoError(t, store.Set(memory.TableID{Concept: memory.ConceptCategoryCodes}, "Rubbers", "01"))
	require.NoError(t, store.Set(memory.TableID{Concept: memory.ConceptSubcategoryCodes}, "Offensive", "02"))
}

func TestAllocateUsesCodeTables(t *testing.T) {
	store := newTestStore(t)
	seedCodeTables(t, store)
	a := NewAllocator(store, nil)

	code, err := a.Allocate(CanonicalProduct{
		Name:     "Rubber Butterfly Tenergy 05",
		Brand:    "Butterfly",
		Category: "Rubbers > Offensive",
	})
	require.NoError(t, err)
	assert.Equal(t, "BUT01020001", code)
}

func TestAllocateFallsBackToHouseSegments(t *testing.T) {
	store := newTestStore(t)
	a := NewAllocator(store, nil)

	code, err := a.Allocate(CanonicalProduct{Name: "Mystery paddle"})
	require.NoError(t, err)
	assert.Equal(t, "DES00000001", code)
}

func TestAllocateIsDeterministicAndUnique(t *testing.T) {
	store := newTestStore(t)
	a := NewAllocator(store, nil)

	first, err := a.Allocate(CanonicalProduct{Name: "Product one"})
	require.NoError(t, err)
	second, err := a.Allocate(CanonicalProduct{Name: "Product two"})
	require.NoError(t, err)
	assert.Equal(t, "DES00000001", first)
	assert.Equal(t, "DES00000002", second)

	// The same name always yields the same code.
	again, err := a.Allocate(CanonicalProduct{Name: "Product one"})
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestAllocateReusesPriorCatalogCode(t *testing.T) {
	store := newTestStore(t)
	prior := []catalog.Product{
		{Code: "DES00000005", Name: "Rubber X"},
	}
	a := NewAllocator(store, prior)

	code, err := a.Allocate(CanonicalProduct{Name: "Rubber X"})
	require.NoError(t, err)
	assert.Equal(t, "DES00000005", code, "a known identity keeps its code")

	// A new product takes the smallest free sequence, not the next one.
	fresh, err := a.Allocate(CanonicalProduct{Name: "Rubber Y"})
	require.NoError(t, err)
	assert.Equal(t, "DES00000001", fresh)
}

func TestAllocateVariantReusesByAttributeFingerprint(t *testing.T) {
	store := newTestStore(t)
	attrs := []AttributePair{{Name: "Color", Value: "Red"}, {Name: "Thickness", Value: "2.1"}}
	prior := []catalog.Product{{
		Code: "DES00000001",
		Name: "Rubber X",
		Variants: []catalog.ProductVariant{
			{Code: "DES00000001-03", AttributeKey: AttributeKey(attrs)},
		},
	}}
	a := NewAllocator(store, prior)

	// Attribute order must not matter for reuse.
	swapped := []AttributePair{{Name: "Thickness", Value: "2.1"}, {Name: "Color", Value: "Red"}}
	code, err := a.AllocateVariant("DES00000001", CanonicalVariant{Attributes: swapped})
	require.NoError(t, err)
	assert.Equal(t, "DES00000001-03", code)

	fresh, err := a.AllocateVariant("DES00000001", CanonicalVariant{
		Attributes: []AttributePair{{Name: "Color", Value: "Black"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "DES00000001-01", fresh)
}

func TestAllocateVariantExhaustion(t *testing.T) {
	store := newTestStore(t)
	prior := []catalog.Product{{Code: "DES00000001", Name: "Rubber X"}}
	for i := 1; i <= maxVariantSequence; i++ {
		prior[0].Variants = append(prior[0].Variants, catalog.ProductVariant{
			Code:         fmt.Sprintf("DES00000001-%02d", i),
			AttributeKey: fmt.Sprintf("color=%d", i),
		})
	}
	a := NewAllocator(store, prior)

	_, err := a.AllocateVariant("DES00000001", CanonicalVariant{
		Attributes: []AttributePair{{Name: "Color", Value: "Teal"}},
	})
	var exhausted *AllocationExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, maxVariantSequence, exhausted.Limit)
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1 290 Kč", 1290, true},
		{"1290,50", 1290.5, true},
		{"€24.99", 24.99, true},
		{"on request", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParsePrice(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.InDelta(t, c.want, got, 0.001, c.in)
		}
	}
}
