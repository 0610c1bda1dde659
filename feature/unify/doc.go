// Package unify implements the product unification feature.
//
// It turns raw scraped product records into a deduplicated canonical catalog
// in four stages:
//  1. Resolution: every attribute of every record is resolved through the
//     tiered engine (learned memory, heuristic text match, generative
//     proposal, human arbitration).
//  2. Merging: drafts sharing a canonical name collapse into one product;
//     scalar disagreements are arbitrated and the verdicts learned.
//  3. Allocation: each product and variant receives a stable hierarchical
//     code, reusing prior-catalog codes wherever the identity matches.
//  4. Learning: everything settled along the way is written back into the
//     memory tables, so repeated runs converge on zero questions.
//
// # Components
//
//   - Resolver: the tiered attribute resolution engine.
//   - MergeEngine: groups and collapses drafts, arbitrating conflicts.
//   - Allocator: deterministic product and variant code assignment.
//   - Pipeline: runs the stages in order over a batch of records.
package unify
