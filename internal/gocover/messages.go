package gocover

const (
	commandUseConstant              = "gomerge [profile...]"
	commandShortDescriptionConstant = "Merge Go cover profiles into a single profile"
	commandLongDescriptionConstant  = "gomerge parses Go -coverprofile files from separate test runs, folds coverage counts per block according to the profile mode, and writes one combined profile."
)

const (
	outputFlagNameConstant             = "output"
	outputFlagUsageConstant            = "Destination for the merged profile; - writes to stdout"
	missingProfilesMessageConstant     = "no coverage profiles provided; pass at least one profile path"
	profileReadErrorTemplateConstant   = "unable to read coverage profile %s: %w"
	profileParseErrorTemplateConstant  = "unable to parse coverage profile %s: %w"
	outputDirectoryErrorTemplate       = "unable to create output directory: %w"
	outputWriteErrorTemplateConstant   = "unable to write merged profile: %w"
	modeMismatchErrorTemplateConstant  = "%s: %w: %s and %s"
	blockOverlapErrorTemplateConstant  = "%s: %w at %d.%d"
	unsupportedModeErrorTemplate       = "%s: %w: %s"
	modeHeaderTemplateConstant         = "mode: %s\n"
	profileBlockLineTemplateConstant   = "%s:%d.%d,%d.%d %d %d\n"
	setCoverageModeConstant            = "set"
	countCoverageModeConstant          = "count"
	atomicCoverageModeConstant         = "atomic"
	stdoutOutputTokenConstant          = "-"
	outputFilePermissionsConstant      = 0o644
	outputDirectoryPermissionsConstant = 0o755
)

const (
	mergeCompletedLogMessageConstant = "Coverage profiles merged"
	profilesLogFieldConstant         = "profiles"
	mergedFilesLogFieldConstant      = "files"
)
