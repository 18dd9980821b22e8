package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLegacyArguments(t *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		expected  []string
	}{
		{
			name:      "empty",
			arguments: nil,
			expected:  nil,
		},
		{
			name:      "legacy_single_dash_flags",
			arguments: []string{"-p", "-description", "-api", "key", "-d", "hint"},
			expected:  []string{"-p", "--description", "--api", "key", "-d", "hint"},
		},
		{
			name:      "legacy_flag_with_value",
			arguments: []string{"-api=key"},
			expected:  []string{"--api=key"},
		},
		{
			name:      "multi_value_lists",
			arguments: []string{"root", "--ignore-dirs", "tmp", "build", "--include-files", "c.py", "-t"},
			expected:  []string{"root", "--ignore-dirs=tmp", "--ignore-dirs=build", "--include-files=c.py", "-t"},
		},
		{
			name:      "list_consumes_until_next_flag",
			arguments: []string{"--ignore-dirs", "tmp", "root"},
			expected:  []string{"--ignore-dirs=tmp", "--ignore-dirs=root"},
		},
		{
			name:      "empty_list_is_dropped",
			arguments: []string{"--ignore-files", "-p"},
			expected:  []string{"-p"},
		},
		{
			name:      "equals_form_untouched",
			arguments: []string{"--ignore-dirs=tmp", "root"},
			expected:  []string{"--ignore-dirs=tmp", "root"},
		},
		{
			name:      "terminator_keeps_rest",
			arguments: []string{"--ignore-dirs", "tmp", "--", "-description"},
			expected:  []string{"--ignore-dirs=tmp", "--", "-description"},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, normalizeLegacyArguments(testCase.arguments))
		})
	}
}
