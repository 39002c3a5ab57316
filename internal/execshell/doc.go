// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines abstractions used throughout profcov
// to run llvm-profdata, llvm-cov, and rustc in a testable manner.
package execshell
