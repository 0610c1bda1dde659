package arbiter

import (
	"fmt"
	"strings"
	"unicode"
)

// Candidate is one possible value for a field, with its provenance.
type Candidate struct {
	// Value is the candidate value.
	Value string
	// RawKey is the original raw key the value came from.
	RawKey string
	// SourceURL is the URL of the source record.
	SourceURL string
}

// Question describes a decision the operator needs to make.
type Question struct {
	// Field is the name of the field being decided (e.g. "Brand").
	Field string
	// ProductName identifies the product under decision.
	ProductName string
	// ProductURL is the source URL of the product, if known.
	ProductURL string
	// Candidates are the distinct known values, with provenance.
	Candidates []Candidate
	// Proposal is an optional suggested value (heuristic or oracle).
	Proposal string
}

// Kind classifies how an answer was produced.
type Kind int

const (
	// Unresolved means the operator gave no answer and no proposal existed.
	Unresolved Kind = iota
	// AcceptedProposal means the operator accepted the proposal with an empty line.
	AcceptedProposal
	// PickedCandidate means the operator chose a numbered candidate.
	PickedCandidate
	// FreeText means the operator typed a replacement value.
	FreeText
)

// Answer is the operator's decision.
type Answer struct {
	Kind  Kind
	Value string
}

// Arbiter is the human arbitration capability. Production reads a console;
// tests supply scripted answers.
type Arbiter interface {
	Ask(q Question) (Answer, error)
}

// maxInputLength bounds free-typed values.
const maxInputLength = 500

// formulaPrefixes are characters a spreadsheet would interpret as the start
// of a formula when the value is later exported to CSV.
const formulaPrefixes = "=+-@\t\r"

// ValidationError describes free-typed input that failed sanitation.
// The console re-prompts; it is never fatal.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Reason
}

// Validate checks a free-typed value against the sanitation rules.
func Validate(input string) error {
	if len(input) > maxInputLength {
		return &ValidationError{Reason: fmt.Sprintf("longer than %d characters", maxInputLength)}
	}
	for _, r := range input {
		if unicode.IsControl(r) {
			return &ValidationError{Reason: "contains control characters"}
		}
	}
	if input != "" && strings.ContainsRune(formulaPrefixes, rune(input[0])) {
		return &ValidationError{Reason: fmt.Sprintf("must not start with %q", input[0])}
	}
	return nil
}
