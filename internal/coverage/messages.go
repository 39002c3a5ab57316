package coverage

const (
	commandUseConstant              = "export"
	commandShortDescriptionConstant = "Merge profile fragments and export lcov reports"
	commandLongDescriptionConstant  = "export merges raw LLVM profile fragments into one indexed profile and emits an lcov report for every instrumented binary found under the target path."

	profrawFlagNameConstant              = "profraw"
	profrawFlagDescriptionConstant       = "Raw profile fragment to merge (repeatable)"
	binaryFlagNameConstant               = "binary"
	binaryFlagDescriptionConstant        = "Instrumented binary or directory containing candidate binaries"
	workingDirectoryFlagNameConstant     = "working-dir"
	workingDirectoryFlagUsageConstant    = "Directory receiving the merged profile (defaults to a fresh temporary directory)"
	outputFlagNameConstant               = "output"
	outputFlagUsageConstant              = "Destination file for the concatenated lcov reports (- writes to stdout)"
	llvmBinDirectoryFlagNameConstant     = "llvm-bin"
	llvmBinDirectoryFlagUsageConstant    = "Directory containing llvm-profdata and llvm-cov"
	missingBinaryTargetMessageConstant   = "binary target is required; supply --binary"
	workingDirectoryCreationErrTemplate  = "unable to prepare working directory: %w"
	outputDirectoryCreationErrTemplate   = "unable to prepare output directory: %w"
	outputWriteErrorTemplateConstant     = "unable to write lcov output: %w"
	serviceCreationErrorTemplateConstant = "unable to construct coverage service: %w"

	mergedProfileFileNameConstant     = "profcov.profdata"
	stdoutOutputTokenConstant         = "-"
	temporaryDirectoryPatternConstant = "profcov-*"
	outputFilePermissionsConstant     = 0o644
	workingDirectoryPermissions       = 0o755

	exportStartedLogMessageConstant   = "Coverage export starting"
	exportFailedLogMessageConstant    = "Coverage export failed"
	exportCompletedLogMessageConstant = "Coverage export completed"
	logFieldBinaryConstant            = "binary"
	logFieldMergedProfileConstant     = "merged_profile"
	logFieldReportCountConstant       = "reports"
	logFieldFailureCountConstant      = "failed_exports"
	logFieldFragmentCountConstant     = "fragments"
	logFieldBinaryTargetConstant      = "binary_target"
	logFieldWorkingDirectoryConstant  = "working_directory"
)
