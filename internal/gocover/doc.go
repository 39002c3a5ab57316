// Package gocover merges Go cover profiles from separate test runs into a
// single profile, folding per-block counters according to the cover mode.
package gocover
