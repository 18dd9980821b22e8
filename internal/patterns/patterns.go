// Package patterns resolves ignore and include rules and decides which entries of a
// traversal are processed.
//
// Include rules take precedence over ignore rules: an entry matching any include rule
// is processed even when it also matches ignore rules.
package patterns

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/overview/internal/types"
	"github.com/temirov/overview/internal/utils"
)

// DefaultIgnorePatterns are applied unless Sources.DisableDefaults is set.
var DefaultIgnorePatterns = []string{".*", "__*__", "venv", "env", "__pycache__"}

// Sources carries the raw pattern inputs gathered from flags and configuration.
type Sources struct {
	IgnoreDirs      []string
	IgnoreFiles     []string
	IgnorePatterns  []string
	IncludeDirs     []string
	IncludeFiles    []string
	IncludePatterns []string
	IgnoreFilePath  string
	DisableDefaults bool
	OnlyIncluded    bool
}

// Decision is the outcome of evaluating one entry.
type Decision int

const (
	// DecisionSkip excludes the entry and, for directories, its whole subtree.
	DecisionSkip Decision = iota
	// DecisionProcess includes the entry.
	DecisionProcess
	// DecisionRescue marks an ignored directory that is still traversed because
	// include rules may select entries below it. The directory itself is only
	// reported when one of its descendants is.
	DecisionRescue
)

func (decision Decision) String() string {
	switch decision {
	case DecisionSkip:
		return "skip"
	case DecisionProcess:
		return "process"
	case DecisionRescue:
		return "rescue"
	default:
		return "unknown"
	}
}

// Resolver answers inclusion questions for a fixed PatternSet.
type Resolver struct {
	set          types.PatternSet
	onlyIncluded bool
}

// Resolve merges the sources into an immutable Resolver. A missing or unreadable
// ignore file is logged and skipped; malformed glob patterns are configuration errors.
func Resolve(sources Sources, logger *zap.Logger) (*Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var ignorePatterns []string
	if !sources.DisableDefaults {
		ignorePatterns = append(ignorePatterns, DefaultIgnorePatterns...)
	}
	ignorePatterns = append(ignorePatterns, sources.IgnorePatterns...)
	ignorePatterns = append(ignorePatterns, loadIgnoreFileOrWarn(sources.IgnoreFilePath, logger)...)

	set := types.PatternSet{
		IgnoreDirs:      utils.DeduplicatePatterns(sources.IgnoreDirs),
		IgnoreFiles:     utils.DeduplicatePatterns(sources.IgnoreFiles),
		IgnorePatterns:  utils.DeduplicatePatterns(ignorePatterns),
		IncludeDirs:     utils.DeduplicatePatterns(sources.IncludeDirs),
		IncludeFiles:    utils.DeduplicatePatterns(sources.IncludeFiles),
		IncludePatterns: utils.DeduplicatePatterns(sources.IncludePatterns),
	}
	if validationError := validateSet(set); validationError != nil {
		return nil, validationError
	}

	logger.Debug("resolved patterns",
		zap.Strings("ignore_dirs", set.IgnoreDirs),
		zap.Strings("ignore_files", set.IgnoreFiles),
		zap.Strings("ignore_patterns", set.IgnorePatterns),
		zap.Strings("include_dirs", set.IncludeDirs),
		zap.Strings("include_files", set.IncludeFiles),
		zap.Strings("include_patterns", set.IncludePatterns),
	)
	return &Resolver{set: set, onlyIncluded: sources.OnlyIncluded}, nil
}

// NewResolver wraps an already resolved PatternSet.
func NewResolver(set types.PatternSet, onlyIncluded bool) *Resolver {
	return &Resolver{set: set, onlyIncluded: onlyIncluded}
}

// PatternSet returns a copy of the resolved patterns.
func (resolver *Resolver) PatternSet() types.PatternSet {
	return types.PatternSet{
		IgnoreDirs:      append([]string(nil), resolver.set.IgnoreDirs...),
		IgnoreFiles:     append([]string(nil), resolver.set.IgnoreFiles...),
		IgnorePatterns:  append([]string(nil), resolver.set.IgnorePatterns...),
		IncludeDirs:     append([]string(nil), resolver.set.IncludeDirs...),
		IncludeFiles:    append([]string(nil), resolver.set.IncludeFiles...),
		IncludePatterns: append([]string(nil), resolver.set.IncludePatterns...),
	}
}

// Decide evaluates an entry identified by its root-relative path, base name and kind.
// withinIgnored is true when an ancestor directory was ignored and is only traversed
// to find included descendants.
func (resolver *Resolver) Decide(relativePath string, name string, kind types.EntryKind, withinIgnored bool) Decision {
	if relativePath == types.RootRelativePath {
		return DecisionProcess
	}
	isDirectory := kind == types.EntryKindDirectory

	if resolver.IsIncluded(relativePath, name, kind) {
		return DecisionProcess
	}
	if withinIgnored || resolver.IsIgnored(relativePath, name, kind) {
		if isDirectory && resolver.set.HasIncludes() {
			return DecisionRescue
		}
		return DecisionSkip
	}
	if !isDirectory && resolver.onlyIncluded && resolver.set.HasIncludes() {
		return DecisionSkip
	}
	return DecisionProcess
}

// IsIncluded reports whether an include rule of the entry's category, or a generic
// include pattern, matches the entry.
func (resolver *Resolver) IsIncluded(relativePath string, name string, kind types.EntryKind) bool {
	isDirectory := kind == types.EntryKindDirectory
	categoryPatterns := resolver.set.IncludeFiles
	if isDirectory {
		categoryPatterns = resolver.set.IncludeDirs
	}
	return matchesAny(categoryPatterns, relativePath, name, isDirectory) ||
		matchesAny(resolver.set.IncludePatterns, relativePath, name, isDirectory)
}

// IsIgnored reports whether an ignore rule of the entry's category, or a generic
// ignore pattern, matches the entry. Include rules are not consulted.
func (resolver *Resolver) IsIgnored(relativePath string, name string, kind types.EntryKind) bool {
	isDirectory := kind == types.EntryKindDirectory
	categoryPatterns := resolver.set.IgnoreFiles
	if isDirectory {
		categoryPatterns = resolver.set.IgnoreDirs
	}
	return matchesAny(categoryPatterns, relativePath, name, isDirectory) ||
		matchesAny(resolver.set.IgnorePatterns, relativePath, name, isDirectory)
}

func validateSet(set types.PatternSet) error {
	groups := []struct {
		field    string
		patterns []string
	}{
		{field: "ignore-dirs", patterns: set.IgnoreDirs},
		{field: "ignore-files", patterns: set.IgnoreFiles},
		{field: "ignore-patterns", patterns: set.IgnorePatterns},
		{field: "include-dirs", patterns: set.IncludeDirs},
		{field: "include-files", patterns: set.IncludeFiles},
		{field: "include-patterns", patterns: set.IncludePatterns},
	}
	for _, group := range groups {
		for _, pattern := range group.patterns {
			if matchError := validatePattern(pattern); matchError != nil {
				configError := types.NewConfigError(group.field, fmt.Sprintf("malformed pattern %q", pattern))
				configError.Err = matchError
				return configError
			}
		}
	}
	return nil
}
