package gocover_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/cover"

	"github.com/profcov/profcov/internal/gocover"
)

const (
	setModeUnitProfileContent = `mode: set
example.com/pkg/alpha.go:10.2,12.3 2 1
example.com/pkg/alpha.go:14.2,15.3 1 0
`
	setModeIntegrationProfileContent = `mode: set
example.com/pkg/alpha.go:10.2,12.3 2 0
example.com/pkg/alpha.go:14.2,15.3 1 1
`
	setModeZetaProfileContent = `mode: set
example.com/pkg/zeta.go:3.2,4.3 1 1
`
	countModeAlphaProfileContent = `mode: count
example.com/pkg/alpha.go:10.2,12.3 2 2
`
	countModeFirstProfileContent = `mode: count
example.com/pkg/beta.go:5.2,7.3 2 2
`
	countModeSecondProfileContent = `mode: count
example.com/pkg/beta.go:5.2,7.3 2 3
`
	countModeExtraBlockProfileContent = `mode: count
example.com/pkg/beta.go:9.2,11.3 3 4
`
	setModeOverlappingProfileContent = `mode: set
example.com/pkg/alpha.go:10.2,13.9 3 1
`
)

func parseProfileContent(testInstance *testing.T, content string) []*cover.Profile {
	testInstance.Helper()
	profiles, parseError := cover.ParseProfilesFromReader(strings.NewReader(content))
	require.NoError(testInstance, parseError)
	return profiles
}

func mergeProfileContents(testInstance *testing.T, contents ...string) ([]*cover.Profile, error) {
	testInstance.Helper()
	var mergedProfiles []*cover.Profile
	for _, content := range contents {
		for _, profile := range parseProfileContent(testInstance, content) {
			var addError error
			mergedProfiles, addError = gocover.AddProfile(mergedProfiles, profile)
			if addError != nil {
				return nil, addError
			}
		}
	}
	return mergedProfiles, nil
}

func renderProfiles(testInstance *testing.T, profiles []*cover.Profile) string {
	testInstance.Helper()
	outputBuffer := &bytes.Buffer{}
	require.NoError(testInstance, gocover.WriteProfiles(outputBuffer, profiles))
	return outputBuffer.String()
}

func TestAddProfileMergesCountersByMode(testInstance *testing.T) {
	testCases := []struct {
		name     string
		contents []string
		expected string
	}{
		{
			name:     "set_mode_ors_counts",
			contents: []string{setModeUnitProfileContent, setModeIntegrationProfileContent},
			expected: "mode: set\nexample.com/pkg/alpha.go:10.2,12.3 2 1\nexample.com/pkg/alpha.go:14.2,15.3 1 1\n",
		},
		{
			name:     "count_mode_adds_counts",
			contents: []string{countModeFirstProfileContent, countModeSecondProfileContent},
			expected: "mode: count\nexample.com/pkg/beta.go:5.2,7.3 2 5\n",
		},
		{
			name:     "disjoint_blocks_interleave_in_order",
			contents: []string{countModeFirstProfileContent, countModeExtraBlockProfileContent},
			expected: "mode: count\nexample.com/pkg/beta.go:5.2,7.3 2 2\nexample.com/pkg/beta.go:9.2,11.3 3 4\n",
		},
		{
			name:     "files_stay_sorted_by_name",
			contents: []string{setModeZetaProfileContent, setModeUnitProfileContent},
			expected: "mode: set\nexample.com/pkg/alpha.go:10.2,12.3 2 1\nexample.com/pkg/alpha.go:14.2,15.3 1 0\nexample.com/pkg/zeta.go:3.2,4.3 1 1\n",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			mergedProfiles, mergeError := mergeProfileContents(testInstance, testCase.contents...)
			require.NoError(testInstance, mergeError)
			require.Equal(testInstance, testCase.expected, renderProfiles(testInstance, mergedProfiles))
		})
	}
}

func TestAddProfileRejectsModeMismatch(testInstance *testing.T) {
	testCases := []struct {
		name     string
		contents []string
	}{
		{
			name:     "same_file_different_modes",
			contents: []string{setModeUnitProfileContent, countModeAlphaProfileContent},
		},
		{
			name:     "disjoint_files_different_modes",
			contents: []string{setModeZetaProfileContent, countModeFirstProfileContent},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			_, mergeError := mergeProfileContents(testInstance, testCase.contents...)
			require.ErrorIs(testInstance, mergeError, gocover.ErrCoverageModeMismatch)
		})
	}
}

func TestAddProfileRejectsOverlappingBlocks(testInstance *testing.T) {
	_, mergeError := mergeProfileContents(testInstance, setModeUnitProfileContent, setModeOverlappingProfileContent)
	require.ErrorIs(testInstance, mergeError, gocover.ErrCoverageBlockOverlap)
}

func TestWriteProfilesSkipsEmptySet(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	require.NoError(testInstance, gocover.WriteProfiles(outputBuffer, nil))
	require.Empty(testInstance, outputBuffer.String())
}
