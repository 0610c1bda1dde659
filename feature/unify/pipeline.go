package unify

import (
	"context"
	"errors"

	"catalog-unifier/core/catalog"
	"catalog-unifier/core/memory"

	"go.uber.org/zap"
)

// Pipeline runs the unification stages in order: resolve each raw record to
// a draft, merge drafts into canonical products, and allocate codes.
type Pipeline struct {
	resolver *Resolver
	merger   *MergeEngine
	store    *memory.Store
	logger   *zap.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(resolver *Resolver, merger *MergeEngine, store *memory.Store, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{resolver: resolver, merger: merger, store: store, logger: logger}
}

// Run unifies a batch of scraped records against the prior catalog. Records
// that fail resolution are logged and skipped; products whose code space is
// exhausted are logged and skipped. Anything else is fatal.
func (p *Pipeline) Run(ctx context.Context, records []RawProductRecord, prior []catalog.Product) ([]CanonicalProduct, error) {
	drafts := make([]DraftProduct, 0, len(records))
	for _, rec := range records {
		draft, err := p.resolver.ResolveRecord(ctx, rec)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			p.logger.Error("Skipping record, resolution failed",
				zap.String("product", rec.Name),
				zap.String("url", rec.URL),
				zap.Error(err))
			continue
		}
		drafts = append(drafts, draft)
	}

	merged, err := p.merger.Merge(drafts)
	if err != nil {
		return nil, err
	}

	alloc := NewAllocator(p.store, prior)
	products := make([]CanonicalProduct, 0, len(merged))
	for _, product := range merged {
		code, err := alloc.Allocate(product)
		if err != nil {
			var full *AllocationExhaustedError
			if errors.As(err, &full) {
				p.logger.Error("Skipping product, no code available",
					zap.String("product", product.Name),
					zap.String("prefix", full.Prefix))
				continue
			}
			return nil, err
		}
		product.Code = code
		exhausted := false
		for i := range product.Variants {
			vcode, err := alloc.AllocateVariant(code, product.Variants[i])
			if err != nil {
				var full *AllocationExhaustedError
				if errors.As(err, &full) {
					p.logger.Error("Skipping product, no variant code available",
						zap.String("product", product.Name),
						zap.String("prefix", full.Prefix))
					exhausted = true
					break
				}
				return nil, err
			}
			product.Variants[i].Code = vcode
		}
		if exhausted {
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

// ResolveRecord resolves every attribute of one raw record into a draft.
// The canonical name is recalled from the name table when the record has
// been seen before; otherwise it is composed from the resolved type, brand,
// and model and learned for next time.
func (r *Resolver) ResolveRecord(ctx context.Context, rec RawProductRecord) (DraftProduct, error) {
	draft := DraftProduct{Raw: rec}

	type target struct {
		concept memory.Concept
		label   string
		dst     *string
	}
	for _, t := range []target{
		{memory.ConceptProductType, "product type", &draft.Type},
		{memory.ConceptProductBrand, "brand", &draft.Brand},
		{memory.ConceptProductModel, "model", &draft.Model},
		{memory.ConceptCategory, "category", &draft.Category},
	} {
		vocab, err := r.store.Values(r.table(t.concept))
		if err != nil {
			return DraftProduct{}, err
		}
		v, err := r.Resolve(ctx, t.concept, t.label, rec.Name, rec, vocab)
		if err != nil {
			return DraftProduct{}, err
		}
		*t.dst = v
	}

	name, err := r.resolveName(rec, draft)
	if err != nil {
		return DraftProduct{}, err
	}
	draft.Name = name

	draft.Variants = make([]CanonicalVariant, 0, len(rec.Variants))
	for _, raw := range rec.Variants {
		v, err := r.resolveVariant(ctx, rec, raw)
		if err != nil {
			return DraftProduct{}, err
		}
		draft.Variants = append(draft.Variants, v)
	}
	return draft, nil
}

func (r *Resolver) resolveName(rec RawProductRecord, draft DraftProduct) (string, error) {
	id := r.table(memory.ConceptName)
	if v, ok, err := r.store.Get(id, rec.Name); err != nil {
		return "", err
	} else if ok {
		return v, nil
	}

	composed := ComposeName(draft.Type, draft.Brand, draft.Model, r.houseBrand)
	if composed == "" {
		// Nothing resolved to compose from; the raw name stands in and the
		// merge stage may still settle a better one.
		return rec.Name, nil
	}
	if err := r.learn(id, rec.Name, composed); err != nil {
		return "", err
	}
	return composed, nil
}

// resolveVariant canonicalizes a raw variant: attribute names and values go
// through their own memory tables, the stock text collapses to a canonical
// status, and prices stay raw until merging.
func (r *Resolver) resolveVariant(ctx context.Context, rec RawProductRecord, raw RawVariant) (CanonicalVariant, error) {
	v := CanonicalVariant{
		Attributes: make([]AttributePair, 0, len(raw.Attributes)),
		Price:      raw.Price,
		ListPrice:  raw.ListPrice,
	}
	for _, pair := range raw.Attributes {
		name, err := r.resolveTerm(ctx, memory.ConceptVariantName, "variant attribute name", pair.Name, rec)
		if err != nil {
			return CanonicalVariant{}, err
		}
		value, err := r.resolveTerm(ctx, memory.ConceptVariantValue, "variant attribute value", pair.Value, rec)
		if err != nil {
			return CanonicalVariant{}, err
		}
		v.Attributes = append(v.Attributes, AttributePair{Name: name, Value: value})
	}
	if raw.StockText != "" {
		status, err := r.resolveTerm(ctx, memory.ConceptStockStatus, "stock status", raw.StockText, rec)
		if err != nil {
			return CanonicalVariant{}, err
		}
		v.StockStatus = status
	}
	return v, nil
}

// resolveTerm resolves a short free-standing term keyed by its own raw text
// rather than by the record name. The heuristic tier matches the vocabulary
// against the term itself, not the whole record. An unresolved term keeps
// its raw form.
func (r *Resolver) resolveTerm(ctx context.Context, concept memory.Concept, label, raw string, rec RawProductRecord) (string, error) {
	vocab, err := r.store.Values(r.table(concept))
	if err != nil {
		return "", err
	}
	termRec := RawProductRecord{Name: raw, URL: rec.URL}
	v, err := r.Resolve(ctx, concept, label, raw, termRec, vocab)
	if err != nil {
		return "", err
	}
	if v == "" {
		return raw, nil
	}
	return v, nil
}
