package unify

import (
	"context"
	"testing"

	"catalog-unifier/core/arbiter"
	"catalog-unifier/core/memory"
	"catalog-unifier/core/oracle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubOracle counts calls and replays a fixed outcome.
type stubOracle struct {
	calls  int
	answer string
	err    error
}

func (s *stubOracle) Propose(_ context.Context, _ oracle.Request) (string, error) {
	s.calls++
	return s.answer, s.err
}

func newTestStore(t *testing.T) *memory.Store {
	t.Helper()
	store, err := memory.NewStore(memory.Config{Root: t.TempDir(), CacheSize: 8}, zap.NewNop())
	require.NoError(t, err)
	return store
}

func newTestResolver(store *memory.Store, orc oracle.Oracle, arb arbiter.Arbiter, autoConfirm bool) *Resolver {
	if arb == nil {
		arb = &arbiter.Scripted{}
	}
	return NewResolver(ResolverOptions{
		Store:       store,
		Oracle:      orc,
		Arbiter:     arb,
		Language:    "EN",
		HouseBrand:  "Desaka",
		AutoConfirm: autoConfirm,
		Logger:      zap.NewNop(),
	})
}

func TestResolveMemoryTierWins(t *testing.T) {
	store := newTestStore(t)
	id := memory.TableID{Concept: memory.ConceptProductBrand, Language: "EN"}
	require.NoError(t, store.Set(id, "Tenergy 05 FX", "Butterfly"))

	orc := &stubOracle{answer: "WrongAnswer"}
	r := newTestResolver(store, orc, nil, true)

	got, err := r.Resolve(context.Background(), memory.ConceptProductBrand, "brand",
		"Tenergy 05 FX", RawProductRecord{Name: "Tenergy 05 FX"}, []string{"Butterfly", "Stiga"})
	require.NoError(t, err)
	assert.Equal(t, "Butterfly", got)
	assert.Zero(t, orc.calls, "learned keys must not reach the oracle")
}

func TestResolveHeuristicSingleMatch(t *testing.T) {
	store := newTestStore(t)
	r := newTestResolver(store, &stubOracle{answer: "WrongAnswer"}, nil, true)

	rec := RawProductRecord{
		Name: "Stiga Allround Classic",
		URL:  "https://shop.example/stiga-allround-classic",
	}
	got, err := r.Resolve(context.Background(), memory.ConceptProductBrand, "brand",
		rec.Name, rec, []string{"Butterfly", "Stiga", "Donic"})
	require.NoError(t, err)
	assert.Equal(t, "Stiga", got)

	// The match is learned, so the next run is a memory hit.
	id := memory.TableID{Concept: memory.ConceptProductBrand, Language: "EN"}
	v, ok, err := store.Get(id, rec.Name)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Stiga", v)
}

func TestResolveHeuristicWholeWordOnly(t *testing.T) {
	store := newTestStore(t)
	arb := &arbiter.Scripted{Answers: []arbiter.Answer{{Kind: arbiter.Unresolved}}}
	r := newTestResolver(store, nil, arb, false)

	// "Stigall" contains "Stiga" as a substring but not as a whole word.
	rec := RawProductRecord{Name: "Stigall Speed Combo"}
	got, err := r.Resolve(context.Background(), memory.ConceptProductBrand, "brand",
		rec.Name, rec, []string{"Stiga"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveOracleAutoConfirmIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	orc := &stubOracle{answer: "Butterfly"}
	r := newTestResolver(store, orc, nil, true)

	// Two vocabulary values match, so the heuristic stays ambiguous and the
	// oracle decides.
	rec := RawProductRecord{Name: "Butterfly Tenergy vs Stiga test blade"}
	vocab := []string{"Butterfly", "Stiga"}

	got, err := r.Resolve(context.Background(), memory.ConceptProductBrand, "brand", rec.Name, rec, vocab)
	require.NoError(t, err)
	assert.Equal(t, "Butterfly", got)
	assert.Equal(t, 1, orc.calls)

	got, err = r.Resolve(context.Background(), memory.ConceptProductBrand, "brand", rec.Name, rec, vocab)
	require.NoError(t, err)
	assert.Equal(t, "Butterfly", got)
	assert.Equal(t, 1, orc.calls, "second resolution must be a memory hit")
}

func TestResolveArbitrationPick(t *testing.T) {
	store := newTestStore(t)
	arb := &arbiter.Scripted{Answers: []arbiter.Answer{
		{Kind: arbiter.PickedCandidate, Value: "Stiga"},
	}}
	r := newTestResolver(store, nil, arb, false)

	rec := RawProductRecord{Name: "Butterfly Stiga crossover paddle"}
	got, err := r.Resolve(context.Background(), memory.ConceptProductBrand, "brand",
		rec.Name, rec, []string{"Butterfly", "Stiga"})
	require.NoError(t, err)
	assert.Equal(t, "Stiga", got)

	require.Len(t, arb.Asked, 1)
	assert.Equal(t, "brand", arb.Asked[0].Field)
	assert.Len(t, arb.Asked[0].Candidates, 2)
}

func TestResolveUnresolvedIsNotPersisted(t *testing.T) {
	store := newTestStore(t)
	r := newTestResolver(store, nil, &arbiter.Scripted{}, false)

	rec := RawProductRecord{Name: "Mystery paddle"}
	got, err := r.Resolve(context.Background(), memory.ConceptProductBrand, "brand",
		rec.Name, rec, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	id := memory.TableID{Concept: memory.ConceptProductBrand, Language: "EN"}
	_, ok, err := store.Get(id, rec.Name)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, store.DirtyCount())
}

func TestResolveOracleFailureCachedForRun(t *testing.T) {
	store := newTestStore(t)
	orc := &stubOracle{err: oracle.ErrUnavailable}
	r := newTestResolver(store, orc, &arbiter.Scripted{}, false)

	rec := RawProductRecord{Name: "Mystery paddle"}
	for i := 0; i < 2; i++ {
		got, err := r.Resolve(context.Background(), memory.ConceptProductBrand, "brand",
			rec.Name, rec, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.Equal(t, 1, orc.calls, "a failed key must not be retried within a run")
}

func TestResolveRecordComposesAndLearnsName(t *testing.T) {
	store := newTestStore(t)
	for concept, pair := range map[memory.Concept][2]string{
		memory.ConceptProductType:  {"Tenergy 05 FX rubber", "Rubber"},
		memory.ConceptProductBrand: {"Tenergy 05 FX rubber", "Butterfly"},
		memory.ConceptProductModel: {"Tenergy 05 FX rubber", "Tenergy 05 FX"},
		memory.ConceptCategory:     {"Tenergy 05 FX rubber", "Rubbers"},
	} {
		id := memory.TableID{Concept: concept, Language: "EN"}
		require.NoError(t, store.Set(id, pair[0], pair[1]))
	}
	r := newTestResolver(store, nil, &arbiter.Scripted{}, false)

	draft, err := r.ResolveRecord(context.Background(), RawProductRecord{Name: "Tenergy 05 FX rubber"})
	require.NoError(t, err)
	assert.Equal(t, "Rubber Butterfly Tenergy 05 FX", draft.Name)

	id := memory.TableID{Concept: memory.ConceptName, Language: "EN"}
	v, ok, err := store.Get(id, "Tenergy 05 FX rubber")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Rubber Butterfly Tenergy 05 FX", v)
}

func TestResolveRecordHouseBrandOmittedFromName(t *testing.T) {
	store := newTestStore(t)
	for concept, value := range map[memory.Concept]string{
		memory.ConceptProductType:  "Table",
		memory.ConceptProductBrand: "Desaka",
		memory.ConceptProductModel: "Tournament 25",
	} {
		id := memory.TableID{Concept: concept, Language: "EN"}
		require.NoError(t, store.Set(id, "Tournament table 25mm", value))
	}
	r := newTestResolver(store, nil, &arbiter.Scripted{}, false)

	draft, err := r.ResolveRecord(context.Background(), RawProductRecord{Name: "Tournament table 25mm"})
	require.NoError(t, err)
	assert.Equal(t, "Table Tournament 25", draft.Name)
}
