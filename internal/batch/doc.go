// Package batch runs several coverage export jobs from a YAML manifest,
// reusing the single-export pipeline per job and writing one lcov report
// for each.
package batch
