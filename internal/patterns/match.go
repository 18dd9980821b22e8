package patterns

import (
	"path/filepath"
	"strings"
)

const pathSegmentSeparator = "/"

// matchesAny reports whether any pattern matches the entry. A pattern matches when it
// matches the base name or the root-relative path using filepath.Match semantics.
// A pattern ending with a slash only matches directories, either by name or by
// relative path, and additionally matches every path below such a directory.
func matchesAny(patterns []string, relativePath string, name string, isDirectory bool) bool {
	normalizedPath := strings.ReplaceAll(relativePath, "\\", pathSegmentSeparator)
	for _, patternValue := range patterns {
		normalizedPattern := strings.ReplaceAll(patternValue, "\\", pathSegmentSeparator)
		if strings.HasSuffix(normalizedPattern, pathSegmentSeparator) {
			if matchesDirectoryPattern(strings.TrimSuffix(normalizedPattern, pathSegmentSeparator), normalizedPath, name, isDirectory) {
				return true
			}
			continue
		}
		if globMatches(normalizedPattern, name) || globMatches(normalizedPattern, normalizedPath) {
			return true
		}
	}
	return false
}

func matchesDirectoryPattern(directoryPattern string, relativePath string, name string, isDirectory bool) bool {
	if isDirectory && (globMatches(directoryPattern, name) || globMatches(directoryPattern, relativePath)) {
		return true
	}
	patternSegments := strings.Split(directoryPattern, pathSegmentSeparator)
	pathSegments := strings.Split(relativePath, pathSegmentSeparator)
	if len(pathSegments) <= len(patternSegments) {
		return false
	}
	return segmentsMatch(pathSegments[:len(patternSegments)], patternSegments)
}

// segmentsMatch reports whether each pattern segment matches the corresponding
// path segment using filepath.Match semantics.
func segmentsMatch(pathSegments, patternSegments []string) bool {
	for segmentIndex, patternSegment := range patternSegments {
		if !globMatches(patternSegment, pathSegments[segmentIndex]) {
			return false
		}
	}
	return true
}

func globMatches(pattern string, candidate string) bool {
	isMatched, matchError := filepath.Match(pattern, candidate)
	return matchError == nil && isMatched
}

// validatePattern reports filepath.ErrBadPattern for malformed globs.
func validatePattern(pattern string) error {
	normalizedPattern := strings.ReplaceAll(pattern, "\\", pathSegmentSeparator)
	_, matchError := filepath.Match(strings.TrimSuffix(normalizedPattern, pathSegmentSeparator), "")
	return matchError
}
