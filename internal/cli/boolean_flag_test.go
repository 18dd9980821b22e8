package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterBooleanFlagParsesValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		arguments   []string
		expected    bool
		expectError bool
	}{
		{name: "defaults_to_false", arguments: []string{}, expected: false},
		{name: "sets_true_without_value", arguments: []string{"--feature"}, expected: true},
		{name: "sets_true_with_shorthand", arguments: []string{"-f"}, expected: true},
		{name: "sets_false_with_equals", arguments: []string{"--feature=false"}, expected: false},
		{name: "sets_false_with_no_literal", arguments: []string{"--feature", "no"}, expected: false},
		{name: "sets_true_with_on_literal", arguments: []string{"--feature", "on"}, expected: true},
		{name: "sets_false_with_numeric_literal", arguments: []string{"--feature", "0"}, expected: false},
		{name: "ignores_non_boolean_trailing_value", arguments: []string{"--feature", "maybe"}, expected: true},
		{name: "rejects_unknown_literal", arguments: []string{"--feature=maybe"}, expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			command := &cobra.Command{Use: "boolean-test"}
			flagValue := true
			registerBooleanFlag(command.Flags(), &flagValue, "feature", "f", "toggle feature behaviour")
			assert.False(t, flagValue)

			parseErr := command.ParseFlags(normalizeBooleanFlagArguments(command, testCase.arguments))
			if testCase.expectError {
				require.Error(t, parseErr)
				return
			}
			require.NoError(t, parseErr)
			assert.Equal(t, testCase.expected, flagValue)
		})
	}
}
