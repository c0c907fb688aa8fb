// Package workflow drives the Fetch, Extract, and Project stages for a single
// dataset.
//
// Every invocation takes an exclusive lock on the storage root, then resolves
// the requested stages in order. A stage whose completeness predicate already
// holds is skipped and journaled as such; an incomplete stage first resolves
// its predecessor and then runs its action. The first failure aborts the run
// and leaves completed artifacts in place, so the next invocation resumes
// from the failed stage.
//
// Status evaluates the same predicates without taking the lock or touching
// the tree.
package workflow
