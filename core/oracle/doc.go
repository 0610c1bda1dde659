// Package oracle defines the generative-model capability the resolver falls
// back to when memory and heuristics fail, and an implementation backed by
// the Anthropic Messages API.
//
// The oracle answers with one proposed value or nothing, and no failure
// mode of the oracle may abort the
// pipeline. Transport errors wrap ErrUnavailable and malformed replies parse
// to an empty answer; the resolver treats both as a plain "no answer" and
// falls through to human arbitration.
//
// Retry and timeout policy belongs to the implementation, not to callers:
// the pipeline makes one blocking call per question.
package oracle
