package batch

const (
	commandUseConstant              = "batch"
	commandShortDescriptionConstant = "Run coverage export jobs from a manifest"
	commandLongDescriptionConstant  = "batch loads a YAML manifest of export jobs and runs each job's merge-and-export pipeline in order, writing one lcov report per job."
)

const (
	manifestFlagNameConstant              = "manifest"
	manifestFlagUsageConstant             = "Path to the batch manifest"
	llvmBinDirectoryFlagNameConstant      = "llvm-bin"
	llvmBinDirectoryFlagUsageConstant     = "Directory containing llvm-profdata and llvm-cov"
	missingManifestMessageConstant        = "manifest path is required; supply --manifest"
	manifestPathRequiredMessageConstant   = "batch manifest path must be provided"
	manifestLoadErrorTemplateConstant     = "failed to load batch manifest: %w"
	manifestParseErrorTemplateConstant    = "failed to parse batch manifest: %w"
	manifestEmptyJobsMessageConstant      = "batch manifest must define at least one job"
	jobNameMissingTemplateConstant        = "batch job %d missing name"
	jobDuplicateNameTemplateConstant      = "batch manifest defines duplicate job name %s"
	jobFragmentsMissingTemplateConstant   = "batch job %s requires at least one profraw fragment"
	jobBinaryMissingTemplateConstant      = "batch job %s missing binary target"
	jobOutputMissingTemplateConstant      = "batch job %s missing output path"
	jobFailedErrorTemplateConstant        = "batch job %s failed: %w"
	serviceCreationErrorTemplateConstant  = "unable to construct coverage service: %w"
	batchServiceCreationErrorTemplate     = "unable to construct batch service: %w"
	workingDirectoryErrorTemplateConstant = "unable to prepare working directory: %w"
	outputDirectoryErrorTemplateConstant  = "unable to create output directory: %w"
	outputWriteErrorTemplateConstant      = "unable to write lcov report: %w"
	temporaryDirectoryPatternConstant     = "profcov-*"
	workingDirectoryPermissionsConstant   = 0o755
	outputFilePermissionsConstant         = 0o644
)

const (
	batchStartedLogMessageConstant    = "Batch starting"
	jobCompletedLogMessageConstant    = "Batch job completed"
	batchCompletedLogMessageConstant  = "Batch completed"
	configurationSourceLogMessage     = "Batch configuration loaded"
	manifestLogFieldConstant          = "manifest"
	jobsLogFieldConstant              = "jobs"
	jobNameLogFieldConstant           = "job"
	reportsLogFieldConstant           = "reports"
	failedExportsLogFieldConstant     = "failed_exports"
	durationLogFieldConstant          = "duration"
	configurationFileLogFieldConstant = "configuration_file"
)
