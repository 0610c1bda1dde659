package unify

import (
	"testing"

	"catalog-unifier/core/arbiter"
	"catalog-unifier/core/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMerger(store *memory.Store, arb arbiter.Arbiter) *MergeEngine {
	if arb == nil {
		arb = &arbiter.Scripted{}
	}
	return NewMergeEngine(store, arb, "EN", "Desaka", zap.NewNop())
}

func TestMergeEmptyValueNeverConflicts(t *testing.T) {
	store := newTestStore(t)
	arb := &arbiter.Scripted{}
	m := newTestMerger(store, arb)

	drafts := []DraftProduct{
		{Name: "Rubber Butterfly Tenergy 05", Brand: "", Raw: RawProductRecord{Name: "Tenergy 05", URL: "https://a.example/1"}},
		{Name: "Rubber Butterfly Tenergy 05", Brand: "Butterfly", Raw: RawProductRecord{Name: "Butterfly Tenergy 05 rubber", URL: "https://b.example/2"}},
	}
	products, err := m.Merge(drafts)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Butterfly", products[0].Brand)
	assert.Empty(t, arb.Asked, "a missing value must not trigger arbitration")
}

func TestMergeConflictArbitratedAndLearnedForAllKeys(t *testing.T) {
	store := newTestStore(t)
	arb := &arbiter.Scripted{Answers: []arbiter.Answer{
		{Kind: arbiter.PickedCandidate, Value: "Stiga"},
	}}
	m := newTestMerger(store, arb)

	drafts := []DraftProduct{
		{Name: "Blade Allround", Brand: "Stiga", Raw: RawProductRecord{Name: "Stiga Allround blade", URL: "https://a.example/1"}},
		{Name: "Blade Allround", Brand: "Donic", Raw: RawProductRecord{Name: "Donic Allround blade", URL: "https://b.example/2"}},
	}
	products, err := m.Merge(drafts)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Stiga", products[0].Brand)
	require.Len(t, arb.Asked, 1)

	// The verdict is written back for every contributing raw key.
	id := memory.TableID{Concept: memory.ConceptProductBrand, Language: "EN"}
	for _, key := range []string{"Stiga Allround blade", "Donic Allround blade"} {
		v, ok, err := store.Get(id, key)
		require.NoError(t, err)
		require.True(t, ok, key)
		assert.Equal(t, "Stiga", v)
	}
}

func TestMergeUnresolvedConflictKeepsFirstWithoutLearning(t *testing.T) {
	store := newTestStore(t)
	m := newTestMerger(store, &arbiter.Scripted{})

	drafts := []DraftProduct{
		{Name: "Blade Allround", Brand: "Stiga", Raw: RawProductRecord{Name: "a"}},
		{Name: "Blade Allround", Brand: "Donic", Raw: RawProductRecord{Name: "b"}},
	}
	products, err := m.Merge(drafts)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Stiga", products[0].Brand)
	assert.Zero(t, store.DirtyCount())
}

func TestMergeVariantDedupIgnoresAttributeOrder(t *testing.T) {
	store := newTestStore(t)
	m := newTestMerger(store, nil)

	drafts := []DraftProduct{
		{Name: "Rubber X", Variants: []CanonicalVariant{{
			Attributes: []AttributePair{{Name: "Color", Value: "Red"}, {Name: "Thickness", Value: "2.1"}},
			Price:      "1 290 Kč",
		}}, Raw: RawProductRecord{Name: "x1"}},
		{Name: "Rubber X", Variants: []CanonicalVariant{{
			Attributes: []AttributePair{{Name: "Thickness", Value: "2.1"}, {Name: "Color", Value: "red"}},
			Price:      "1290,00",
		}, {
			Attributes: []AttributePair{{Name: "Color", Value: "Black"}},
			Price:      "1 190",
		}}, Raw: RawProductRecord{Name: "x2"}},
	}
	products, err := m.Merge(drafts)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Len(t, products[0].Variants, 2)
	assert.InDelta(t, 1290.0, products[0].Price, 0.001)
}

func TestMergeProvenanceUnionPreservesOrder(t *testing.T) {
	store := newTestStore(t)
	m := newTestMerger(store, nil)

	drafts := []DraftProduct{
		{Name: "Rubber X", Raw: RawProductRecord{Name: "Rubber X red", URL: "https://a.example/1"}},
		{Name: "Rubber X", Raw: RawProductRecord{Name: "Rubber X black", URL: "https://b.example/2"}},
		{Name: "Rubber X", Raw: RawProductRecord{Name: "Rubber X red", URL: "https://a.example/1"}},
	}
	products, err := m.Merge(drafts)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, []string{"Rubber X red", "Rubber X black"}, products[0].OriginalNames)
	assert.Equal(t, []string{"https://a.example/1", "https://b.example/2"}, products[0].SourceURLs)
}

func TestMergeRecomposesNameFromSettledIdentity(t *testing.T) {
	store := newTestStore(t)
	m := newTestMerger(store, nil)

	drafts := []DraftProduct{
		{Name: "Tenergy 05", Type: "Rubber", Brand: "Butterfly", Model: "Tenergy 05",
			Raw: RawProductRecord{Name: "Butterfly Tenergy 05"}},
	}
	products, err := m.Merge(drafts)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Rubber Butterfly Tenergy 05", products[0].Name)

	id := memory.TableID{Concept: memory.ConceptName, Language: "EN"}
	v, ok, err := store.Get(id, "Butterfly Tenergy 05")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Rubber Butterfly Tenergy 05", v)
}

func TestMergeKeepsNameWhenBrandUnsettled(t *testing.T) {
	store := newTestStore(t)
	m := newTestMerger(store, nil)

	drafts := []DraftProduct{
		{Name: "Tenergy 05", Type: "Rubber", Brand: "", Model: "Tenergy 05",
			Raw: RawProductRecord{Name: "Tenergy 05"}},
	}
	products, err := m.Merge(drafts)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Tenergy 05", products[0].Name)
	assert.Zero(t, store.DirtyCount(), "no recompose without a settled brand")
}

func TestMergeGroupsKeepFirstAppearanceOrder(t *testing.T) {
	store := newTestStore(t)
	m := newTestMerger(store, nil)

	drafts := []DraftProduct{
		{Name: "B", Raw: RawProductRecord{Name: "b1"}},
		{Name: "A", Raw: RawProductRecord{Name: "a1"}},
		{Name: "B", Raw: RawProductRecord{Name: "b2"}},
	}
	products, err := m.Merge(drafts)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "B", products[0].Name)
	assert.Equal(t, "A", products[1].Name)
}
