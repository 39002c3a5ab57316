package coverage

// CommandOptions captures the configurable parameters for one export run.
type CommandOptions struct {
	FragmentPaths        []string
	BinaryTarget         string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// BinaryReport pairs an exported lcov document with the binary it covers.
type BinaryReport struct {
	BinaryPath string
	LcovData   []byte
}

// ExportFailure records a binary whose export failed and was skipped.
type ExportFailure struct {
	BinaryPath string
	Cause      error
}

// ExportOutcome aggregates the results of one merge-and-export run.
type ExportOutcome struct {
	MergedProfilePath string
	Reports           []BinaryReport
	Failures          []ExportFailure
}

// CombinedLcov concatenates the collected reports preserving export order.
func (outcome ExportOutcome) CombinedLcov() []byte {
	var combined []byte
	for _, report := range outcome.Reports {
		combined = append(combined, report.LcovData...)
	}
	return combined
}
