// Package processor runs the bookletgen subcommands. It connects the
// item bank loader, the booklet generator, the translation augmenter and
// the assignment store to the resolved command-line settings.
package processor
