package pathutils

import (
	"strings"
)

// PathSanitizer normalizes path inputs consistently across commands.
type PathSanitizer struct {
	homeExpander *HomeExpander
}

// NewPathSanitizer constructs a PathSanitizer with a default home expander.
func NewPathSanitizer() *PathSanitizer {
	return NewPathSanitizerWithExpander(nil)
}

// NewPathSanitizerWithExpander constructs a PathSanitizer using the provided expander.
func NewPathSanitizerWithExpander(homeExpander *HomeExpander) *PathSanitizer {
	resolvedExpander := homeExpander
	if resolvedExpander == nil {
		resolvedExpander = NewHomeExpander()
	}

	return &PathSanitizer{homeExpander: resolvedExpander}
}

// Sanitize trims whitespace, expands the user's home directory, and removes empty values.
func (sanitizer *PathSanitizer) Sanitize(candidatePaths []string) []string {
	expander := sanitizer.resolveExpander()

	sanitizedPaths := make([]string, 0, len(candidatePaths))
	for candidateIndex := range candidatePaths {
		sanitizedPath := sanitizePathWithExpander(expander, candidatePaths[candidateIndex])
		if len(sanitizedPath) == 0 {
			continue
		}
		sanitizedPaths = append(sanitizedPaths, sanitizedPath)
	}

	if len(sanitizedPaths) == 0 {
		return nil
	}

	return sanitizedPaths
}

// SanitizePath normalizes a single path, returning an empty string for blank input.
func (sanitizer *PathSanitizer) SanitizePath(candidatePath string) string {
	return sanitizePathWithExpander(sanitizer.resolveExpander(), candidatePath)
}

func (sanitizer *PathSanitizer) resolveExpander() *HomeExpander {
	if sanitizer == nil || sanitizer.homeExpander == nil {
		return NewHomeExpander()
	}
	return sanitizer.homeExpander
}

func sanitizePathWithExpander(expander *HomeExpander, candidatePath string) string {
	trimmedCandidate := strings.TrimSpace(candidatePath)
	if len(trimmedCandidate) == 0 {
		return ""
	}

	return expander.Expand(trimmedCandidate)
}
