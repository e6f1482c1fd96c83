// Package booklet implements matrix-sampling booklet generation: items are
// stratified by category and difficulty, dealt round-robin into booklets,
// linked to the preceding booklet with shared anchor items and finally
// shuffled per booklet. All randomness is derived from a single seed so
// the same item bank always yields the same booklets.
package booklet
