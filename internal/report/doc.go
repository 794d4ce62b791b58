// Package report renders fetch results for the terminal or for machines.
//
// The text format prints one status line per repository remote, ordered by
// path and remote, with failure details indented below the line. JSON and YAML
// carry the same entries.
package report
