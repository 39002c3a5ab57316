// Package coverage implements the merge-and-export pipeline that turns raw
// LLVM profile fragments into per-binary lcov reports.
//
// It exposes CommandBuilder for wiring the export Cobra command, Service for
// driving the pipeline programmatically, and supporting abstractions for the
// toolchain, discovery, and file system collaborators.
package coverage
