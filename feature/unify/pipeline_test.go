package unify

import (
	"context"
	"fmt"
	"testing"

	"catalog-unifier/core/arbiter"
	"catalog-unifier/core/catalog"
	"catalog-unifier/core/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPipelineRunUnifiesAcrossSources(t *testing.T) {
	store := newTestStore(t)
	for _, key := range []string{"Butterfly Tenergy 05", "Tenergy 05 rubber red/black"} {
		require.NoError(t, store.Set(memory.TableID{Concept: memory.ConceptName, Language: "EN"}, key, "Rubber Butterfly Tenergy 05"))
		require.NoError(t, store.Set(memory.TableID{Concept: memory.ConceptProductBrand, Language: "EN"}, key, "Butterfly"))
		require.NoError(t, store.Set(memory.TableID{Concept: memory.ConceptProductType, Language: "EN"}, key, "Rubber"))
		require.NoError(t, store.Set(memory.TableID{Concept: memory.ConceptProductModel, Language: "EN"}, key, "Tenergy 05"))
		require.NoError(t, store.Set(memory.TableID{Concept: memory.ConceptCategory, Language: "EN"}, key, "Rubbers"))
	}

	r := newTestResolver(store, nil, &arbiter.Scripted{}, false)
	m := newTestMerger(store, &arbiter.Scripted{})
	p := NewPipeline(r, m, store, zap.NewNop())

	records := []RawProductRecord{
		{
			Name: "Butterfly Tenergy 05",
			URL:  "https://a.example/tenergy-05",
			Variants: []RawVariant{
				{Attributes: []AttributePair{{Name: "Color", Value: "Red"}}, Price: "1 290"},
			},
		},
		{
			Name: "Tenergy 05 rubber red/black",
			URL:  "https://b.example/tenergy",
			Variants: []RawVariant{
				{Attributes: []AttributePair{{Name: "Color", Value: "Red"}}, Price: "1290,00"},
				{Attributes: []AttributePair{{Name: "Color", Value: "Black"}}, Price: "1 190"},
			},
		},
	}

	products, err := p.Run(context.Background(), records, nil)
	require.NoError(t, err)
	require.Len(t, products, 1)

	got := products[0]
	assert.Equal(t, "Rubber Butterfly Tenergy 05", got.Name)
	assert.Equal(t, "Butterfly", got.Brand)
	assert.Equal(t, "DES00000001", got.Code)
	assert.Equal(t, []string{"https://a.example/tenergy-05", "https://b.example/tenergy"}, got.SourceURLs)

	require.Len(t, got.Variants, 2, "identical variants from both sources collapse")
	assert.Equal(t, "DES00000001-01", got.Variants[0].Code)
	assert.Equal(t, "DES00000001-02", got.Variants[1].Code)
	assert.InDelta(t, 1290.0, got.Price, 0.001)
}

func TestPipelineAllocatesWithoutPriorCatalog(t *testing.T) {
	store := newTestStore(t)
	r := newTestResolver(store, nil, &arbiter.Scripted{}, false)
	m := newTestMerger(store, &arbiter.Scripted{})
	p := NewPipeline(r, m, store, zap.NewNop())

	products, err := p.Run(context.Background(), []RawProductRecord{{Name: "Lone paddle"}}, nil)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "DES00000001", products[0].Code)
}

func TestPipelineSkipsProductWithExhaustedVariantCodes(t *testing.T) {
	store := newTestStore(t)
	r := newTestResolver(store, nil, &arbiter.Scripted{}, false)
	m := newTestMerger(store, &arbiter.Scripted{})
	p := NewPipeline(r, m, store, zap.NewNop())

	// "Worn paddle" keeps its prior code, but every variant sequence under
	// it is already taken.
	prior := []catalog.Product{{Code: "DES00000001", Name: "Worn paddle"}}
	for i := 1; i <= maxVariantSequence; i++ {
		prior[0].Variants = append(prior[0].Variants, catalog.ProductVariant{
			Code:         fmt.Sprintf("DES00000001-%02d", i),
			AttributeKey: fmt.Sprintf("color=%d", i),
		})
	}

	records := []RawProductRecord{
		{
			Name: "Worn paddle",
			Variants: []RawVariant{
				{Attributes: []AttributePair{{Name: "Color", Value: "Teal"}}, Price: "990"},
			},
		},
		{
			Name: "Fresh paddle",
			Variants: []RawVariant{
				{Attributes: []AttributePair{{Name: "Color", Value: "Red"}}, Price: "450"},
			},
		},
	}

	products, err := p.Run(context.Background(), records, prior)
	require.NoError(t, err)
	require.Len(t, products, 1, "the exhausted product is dropped, the rest of the run survives")
	assert.Equal(t, "Fresh paddle", products[0].Name)
	assert.Equal(t, "DES00000002", products[0].Code)
	require.Len(t, products[0].Variants, 1)
	assert.Equal(t, "DES00000002-01", products[0].Variants[0].Code)
}
