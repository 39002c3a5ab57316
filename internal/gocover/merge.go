package gocover

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"golang.org/x/tools/cover"
)

// ErrCoverageModeMismatch indicates profiles recorded with different cover modes.
var ErrCoverageModeMismatch = errors.New("coverage modes differ")

// ErrCoverageBlockOverlap indicates blocks that share a start but disagree on extent.
var ErrCoverageBlockOverlap = errors.New("coverage blocks overlap")

// ErrUnsupportedCoverageMode indicates a cover mode outside set, count, and atomic.
var ErrUnsupportedCoverageMode = errors.New("unsupported coverage mode")

// AddProfile folds profile into the set, merging counters when the set already
// holds the same file. The set stays sorted by file name and carries a single
// cover mode.
func AddProfile(profiles []*cover.Profile, profile *cover.Profile) ([]*cover.Profile, error) {
	if len(profiles) > 0 && profiles[0].Mode != profile.Mode {
		return nil, fmt.Errorf(modeMismatchErrorTemplateConstant, profile.FileName, ErrCoverageModeMismatch, profiles[0].Mode, profile.Mode)
	}
	insertionIndex := sort.Search(len(profiles), func(candidateIndex int) bool {
		return profiles[candidateIndex].FileName >= profile.FileName
	})
	if insertionIndex < len(profiles) && profiles[insertionIndex].FileName == profile.FileName {
		if mergeError := mergeFileProfiles(profiles[insertionIndex], profile); mergeError != nil {
			return nil, mergeError
		}
		return profiles, nil
	}
	profiles = append(profiles, nil)
	copy(profiles[insertionIndex+1:], profiles[insertionIndex:])
	profiles[insertionIndex] = profile
	return profiles, nil
}

func mergeFileProfiles(existingProfile *cover.Profile, incomingProfile *cover.Profile) error {
	// Blocks are sorted on both sides, so each merge resumes after the
	// previous insertion point.
	searchStart := 0
	for _, incomingBlock := range incomingProfile.Blocks {
		nextStart, mergeError := mergeProfileBlock(existingProfile, incomingBlock, searchStart)
		if mergeError != nil {
			return mergeError
		}
		searchStart = nextStart
	}
	return nil
}

func mergeProfileBlock(existingProfile *cover.Profile, incomingBlock cover.ProfileBlock, searchStart int) (int, error) {
	blockIndex := searchStart + sort.Search(len(existingProfile.Blocks)-searchStart, func(candidateOffset int) bool {
		candidateBlock := existingProfile.Blocks[candidateOffset+searchStart]
		if candidateBlock.StartLine != incomingBlock.StartLine {
			return candidateBlock.StartLine > incomingBlock.StartLine
		}
		return candidateBlock.StartCol >= incomingBlock.StartCol
	})

	if blockIndex < len(existingProfile.Blocks) &&
		existingProfile.Blocks[blockIndex].StartLine == incomingBlock.StartLine &&
		existingProfile.Blocks[blockIndex].StartCol == incomingBlock.StartCol {
		matchedBlock := existingProfile.Blocks[blockIndex]
		if matchedBlock.EndLine != incomingBlock.EndLine || matchedBlock.EndCol != incomingBlock.EndCol {
			return 0, fmt.Errorf(blockOverlapErrorTemplateConstant, existingProfile.FileName, ErrCoverageBlockOverlap, incomingBlock.StartLine, incomingBlock.StartCol)
		}
		switch existingProfile.Mode {
		case setCoverageModeConstant:
			existingProfile.Blocks[blockIndex].Count |= incomingBlock.Count
		case countCoverageModeConstant, atomicCoverageModeConstant:
			existingProfile.Blocks[blockIndex].Count += incomingBlock.Count
		default:
			return 0, fmt.Errorf(unsupportedModeErrorTemplate, existingProfile.FileName, ErrUnsupportedCoverageMode, existingProfile.Mode)
		}
		return blockIndex + 1, nil
	}

	if blockIndex > 0 {
		precedingBlock := existingProfile.Blocks[blockIndex-1]
		if precedingBlock.EndLine > incomingBlock.StartLine ||
			(precedingBlock.EndLine == incomingBlock.StartLine && precedingBlock.EndCol > incomingBlock.StartCol) {
			return 0, fmt.Errorf(blockOverlapErrorTemplateConstant, existingProfile.FileName, ErrCoverageBlockOverlap, incomingBlock.StartLine, incomingBlock.StartCol)
		}
	}
	if blockIndex < len(existingProfile.Blocks) {
		followingBlock := existingProfile.Blocks[blockIndex]
		if followingBlock.StartLine < incomingBlock.EndLine ||
			(followingBlock.StartLine == incomingBlock.EndLine && followingBlock.StartCol < incomingBlock.EndCol) {
			return 0, fmt.Errorf(blockOverlapErrorTemplateConstant, existingProfile.FileName, ErrCoverageBlockOverlap, incomingBlock.StartLine, incomingBlock.StartCol)
		}
	}

	existingProfile.Blocks = append(existingProfile.Blocks, cover.ProfileBlock{})
	copy(existingProfile.Blocks[blockIndex+1:], existingProfile.Blocks[blockIndex:])
	existingProfile.Blocks[blockIndex] = incomingBlock
	return blockIndex + 1, nil
}

// WriteProfiles renders the merged set as a Go cover profile: a single mode
// header followed by every block in file order. An empty set writes nothing.
func WriteProfiles(writer io.Writer, profiles []*cover.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	if _, writeError := fmt.Fprintf(writer, modeHeaderTemplateConstant, profiles[0].Mode); writeError != nil {
		return writeError
	}
	for _, profile := range profiles {
		for _, profileBlock := range profile.Blocks {
			_, writeError := fmt.Fprintf(writer, profileBlockLineTemplateConstant,
				profile.FileName,
				profileBlock.StartLine, profileBlock.StartCol,
				profileBlock.EndLine, profileBlock.EndCol,
				profileBlock.NumStmt, profileBlock.Count,
			)
			if writeError != nil {
				return writeError
			}
		}
	}
	return nil
}
