// Package toolchain locates and drives the LLVM coverage tools.
//
// It resolves llvm-profdata and llvm-cov through the host Rust toolchain,
// applies the existence policy for the profile merger, and exposes clients
// that run the merge and export operations through execshell.
package toolchain
