// Package itembank loads the assessment item bank from CSV. It resolves
// image references into inline data URIs so the generated booklets are
// self-contained.
package itembank
