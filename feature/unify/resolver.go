package unify

import (
	"context"
	"strings"
	"unicode"

	"catalog-unifier/core/arbiter"
	"catalog-unifier/core/memory"
	"catalog-unifier/core/oracle"

	"go.uber.org/zap"
)

// Resolver answers "what is the canonical value of this attribute for this
// record" through four short-circuiting tiers: learned memory, heuristic
// text match, the generative-model oracle, and human arbitration. Every
// answer found below tier 1 is written back into the attribute's memory
// table, so the next occurrence of the same raw key is a cache hit.
type Resolver struct {
	store       *memory.Store
	oracle      oracle.Oracle
	arb         arbiter.Arbiter
	language    string
	houseBrand  string
	autoConfirm bool
	logger      *zap.Logger

	// noAnswer remembers (table, key) pairs the oracle already failed on in
	// this run, so an unavailable oracle is not contacted again for them.
	noAnswer map[string]struct{}
}

// ResolverOptions bundles the resolver's collaborators and settings.
type ResolverOptions struct {
	Store *memory.Store
	// Oracle may be nil; tier 3 is then skipped entirely.
	Oracle      oracle.Oracle
	Arbiter     arbiter.Arbiter
	Language    string
	HouseBrand  string
	AutoConfirm bool
	Logger      *zap.Logger
}

// NewResolver creates a resolver.
func NewResolver(opts ResolverOptions) *Resolver {
	l := opts.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &Resolver{
		store:       opts.Store,
		oracle:      opts.Oracle,
		arb:         opts.Arbiter,
		language:    opts.Language,
		houseBrand:  opts.HouseBrand,
		autoConfirm: opts.AutoConfirm,
		logger:      l,
		noAnswer:    make(map[string]struct{}),
	}
}

func (r *Resolver) table(concept memory.Concept) memory.TableID {
	return memory.TableID{Concept: concept, Language: r.language}
}

// Resolve resolves one attribute of one record. rawKey is the source key the
// answer is learned under (usually the record's original name, or the raw
// text for variant attributes). vocabulary is the set of known valid values
// for the heuristic tier; it may be empty.
//
// An empty result with a nil error means "unresolved": the caller supplies
// its attribute-specific default. Unresolved outcomes are never persisted.
func (r *Resolver) Resolve(ctx context.Context, concept memory.Concept, attribute, rawKey string, rec RawProductRecord, vocabulary []string) (string, error) {
	id := r.table(concept)

	// Tier 1: learned memory.
	if v, ok, err := r.store.Get(id, rawKey); err != nil {
		return "", err
	} else if ok {
		return v, nil
	}

	// Tier 2: whole-word heuristic match over the record's texts.
	matches := r.heuristicMatches(rec, vocabulary)
	if len(matches) == 1 {
		if err := r.learn(id, rawKey, matches[0]); err != nil {
			return "", err
		}
		r.logger.Debug("Heuristic match accepted",
			zap.String("attribute", attribute),
			zap.String("key", rawKey),
			zap.String("value", matches[0]))
		return matches[0], nil
	}

	// Tier 3: the oracle, with the ambiguous candidates as hints.
	proposal := r.askOracle(ctx, id, attribute, rawKey, rec, matches, vocabulary)
	if proposal != "" && r.autoConfirm {
		if err := r.learn(id, rawKey, proposal); err != nil {
			return "", err
		}
		return proposal, nil
	}

	// Tier 4: human arbitration.
	answer, err := r.arb.Ask(arbiter.Question{
		Field:       attribute,
		ProductName: rec.Name,
		ProductURL:  rec.URL,
		Candidates:  candidatesFrom(matches, rawKey, rec.URL),
		Proposal:    proposal,
	})
	if err != nil {
		return "", err
	}
	if answer.Kind == arbiter.Unresolved {
		r.logger.Warn("Attribute left unresolved",
			zap.String("attribute", attribute),
			zap.String("product", rec.Name),
			zap.String("url", rec.URL),
			zap.Strings("candidates", matches))
		return "", nil
	}
	if err := r.learn(id, rawKey, answer.Value); err != nil {
		return "", err
	}
	return answer.Value, nil
}

// learn persists rawKey → value so tier 1 succeeds for all future
// occurrences of the key, in this run and the next.
func (r *Resolver) learn(id memory.TableID, rawKey, value string) error {
	return r.store.Set(id, rawKey, value)
}

func (r *Resolver) askOracle(ctx context.Context, id memory.TableID, attribute, rawKey string, rec RawProductRecord, hints, vocabulary []string) string {
	if r.oracle == nil {
		return ""
	}
	negKey := id.String() + "\x00" + rawKey
	if _, done := r.noAnswer[negKey]; done {
		return ""
	}

	table, err := r.store.Load(id)
	if err != nil {
		r.logger.Warn("Skipping oracle, memory table unavailable", zap.Error(err))
		return ""
	}
	examples := make([]oracle.Example, 0, table.Len())
	for _, e := range table.Entries() {
		examples = append(examples, oracle.Example{Key: e.Key, Value: e.Value})
	}

	proposal, err := r.oracle.Propose(ctx, oracle.Request{
		Attribute:        attribute,
		ProductName:      rec.Name,
		Description:      rec.Description,
		ShortDescription: rec.ShortDescription,
		URL:              rec.URL,
		Hints:            hints,
		Vocabulary:       vocabulary,
		Examples:         examples,
		Language:         r.language,
	})
	if err != nil {
		// Oracle failures are never fatal; fall through to arbitration.
		r.logger.Warn("Oracle unavailable",
			zap.String("attribute", attribute),
			zap.String("product", rec.Name),
			zap.Error(err))
		r.noAnswer[negKey] = struct{}{}
		return ""
	}
	if proposal == "" {
		r.noAnswer[negKey] = struct{}{}
		return ""
	}
	return proposal
}

// heuristicMatches scans the record's text fields for whole-word matches
// against the vocabulary and returns the distinct matched values, in
// vocabulary order. A value never matches as a substring of a longer token.
func (r *Resolver) heuristicMatches(rec RawProductRecord, vocabulary []string) []string {
	if len(vocabulary) == 0 {
		return nil
	}
	texts := []string{rec.Name, rec.URL, rec.Description, rec.ShortDescription}
	tokenized := make([][]string, 0, len(texts))
	for _, t := range texts {
		if t != "" {
			tokenized = append(tokenized, tokenize(t))
		}
	}

	var matches []string
	for _, value := range vocabulary {
		want := tokenize(value)
		if len(want) == 0 {
			continue
		}
		for _, tokens := range tokenized {
			if containsSequence(tokens, want) {
				matches = append(matches, value)
				break
			}
		}
	}
	return matches
}

// tokenize lowercases and splits on any non-alphanumeric rune, so word
// boundaries hold across URLs, hyphens, and punctuation alike.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsSequence reports whether want appears as a contiguous subsequence
// of tokens.
func containsSequence(tokens, want []string) bool {
	if len(want) > len(tokens) {
		return false
	}
	for i := 0; i+len(want) <= len(tokens); i++ {
		match := true
		for j := range want {
			if tokens[i+j] != want[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func candidatesFrom(values []string, rawKey, url string) []arbiter.Candidate {
	cands := make([]arbiter.Candidate, 0, len(values))
	for _, v := range values {
		cands = append(cands, arbiter.Candidate{Value: v, RawKey: rawKey, SourceURL: url})
	}
	return cands
}
