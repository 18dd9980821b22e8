package cli

import (
	"strings"
)

// legacyFlagNames maps the single-dash long flags of the historical command line to
// their double-dash equivalents. Without the rewrite pflag would read "-description"
// as the shorthand cluster "-d escription".
var legacyFlagNames = map[string]string{
	"-" + descriptionFlagName: "--" + descriptionFlagName,
	"-" + apiFlagName:         "--" + apiFlagName,
}

// multiValueFlagNames lists the pattern flags that accept several space-separated
// values after a single occurrence, as in "--ignore-dirs tmp build".
var multiValueFlagNames = map[string]struct{}{
	"--" + ignoreDirsFlagName:      {},
	"--" + ignoreFilesFlagName:     {},
	"--" + ignorePatternsFlagName:  {},
	"--" + includeDirsFlagName:     {},
	"--" + includeFilesFlagName:    {},
	"--" + includePatternsFlagName: {},
	"--" + extensionsFlagName:      {},
}

// normalizeLegacyArguments rewrites legacy single-dash long flags and expands
// multi-value pattern flags into one "--flag=value" argument per value. A list ends
// at the next argument starting with "-". Everything after "--" is kept verbatim.
func normalizeLegacyArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	index := 0
	for index < len(arguments) {
		current := arguments[index]
		if current == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		current = rewriteLegacyFlag(current)
		if _, multiValue := multiValueFlagNames[current]; multiValue {
			index++
			for index < len(arguments) && !strings.HasPrefix(arguments[index], "-") {
				normalized = append(normalized, current+"="+arguments[index])
				index++
			}
			continue
		}
		normalized = append(normalized, current)
		index++
	}
	return normalized
}

func rewriteLegacyFlag(argument string) string {
	name, value, hasValue := strings.Cut(argument, "=")
	replacement, legacy := legacyFlagNames[name]
	if !legacy {
		return argument
	}
	if hasValue {
		return replacement + "=" + value
	}
	return replacement
}
