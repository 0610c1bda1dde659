package oracle

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the oracle could not be reached or did not produce
// a usable answer. It is never fatal: the resolver treats it exactly like a
// "no answer" reply and falls through to human arbitration.
var ErrUnavailable = errors.New("oracle unavailable")

// Example is an existing memory pair included in a request so the oracle can
// stay consistent with previously learned values.
type Example struct {
	Key   string
	Value string
}

// Request describes one attribute question about one product record.
type Request struct {
	// Attribute is the attribute being resolved (e.g. "brand", "category").
	Attribute string
	// ProductName is the raw product name.
	ProductName string
	// Description and ShortDescription are the record's marketing texts.
	Description      string
	ShortDescription string
	// URL is the source URL of the record.
	URL string
	// Hints are heuristic candidates found in the record's texts, if any.
	Hints []string
	// Vocabulary is the set of known valid values, if the attribute is
	// closed (e.g. the category list). Empty for open attributes.
	Vocabulary []string
	// Examples are existing memory pairs for consistency.
	Examples []Example
	// Language is the language the answer should be in.
	Language string
}

// Oracle is the generative-model capability providing best-effort attribute
// suggestions. An empty answer with a nil error means "no answer".
type Oracle interface {
	Propose(ctx context.Context, req Request) (string, error)
}
