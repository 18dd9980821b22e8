// Package utils contains general helper functions used across the overview tool.
package utils

import (
	"path/filepath"
	"strings"
)

// Well-known names used across the project.
const (
	// ApplicationName is the command name.
	ApplicationName = "overview"
	// ConfigFileName is the name of the per-project configuration file.
	ConfigFileName = ".overview.yaml"
	// GlobalConfigDirectoryName is the directory below the home directory holding the global configuration.
	GlobalConfigDirectoryName = ".overview"
	// GlobalConfigFileName is the file name of the global configuration.
	GlobalConfigFileName = "config.yaml"
	// PythonExtension is the extension aggregated by the python mode.
	PythonExtension = ".py"
	// AnyExtension selects every file regardless of its extension.
	AnyExtension = "*"
)

// DeduplicatePatterns removes duplicate and blank patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{}, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		if _, exists := encounteredPatterns[trimmedPattern]; exists {
			continue
		}
		encounteredPatterns[trimmedPattern] = struct{}{}
		result = append(result, trimmedPattern)
	}
	return result
}

// ContainsString checks if a slice of strings contains a specific target string.
func ContainsString(stringSlice []string, targetString string) bool {
	for _, currentString := range stringSlice {
		if currentString == targetString {
			return true
		}
	}
	return false
}

// RelativePathOrSelf calculates the slash-separated relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// NormalizeExtensions lower-cases extensions and ensures each starts with a dot.
// AnyExtension is kept as is.
func NormalizeExtensions(extensions []string) []string {
	normalized := make([]string, 0, len(extensions))
	for _, extension := range DeduplicatePatterns(extensions) {
		lowered := strings.ToLower(extension)
		if lowered != AnyExtension && !strings.HasPrefix(lowered, ".") {
			lowered = "." + lowered
		}
		if !ContainsString(normalized, lowered) {
			normalized = append(normalized, lowered)
		}
	}
	return normalized
}

// HasExtension reports whether name ends with one of the extensions, ignoring case.
func HasExtension(name string, extensions []string) bool {
	loweredExtension := strings.ToLower(filepath.Ext(name))
	if loweredExtension == "" {
		return false
	}
	return ContainsString(extensions, loweredExtension)
}
