// Package types defines the cross-package data structures used by the overview CLI.
package types

import (
	"io/fs"
)

// EntryKind classifies a filesystem entry produced by the walker.
type EntryKind string

const (
	EntryKindFile      EntryKind = "file"
	EntryKindDirectory EntryKind = "directory"
	EntryKindSymlink   EntryKind = "symlink"
)

// RootRelativePath is the relative path of the traversal root.
const RootRelativePath = "."

// FileEntry describes one filesystem entry visited during a traversal.
type FileEntry struct {
	AbsolutePath string
	RelativePath string
	Name         string
	Depth        int
	Kind         EntryKind
	Size         int64
	Mode         fs.FileMode
	Owner        string
	LinkTarget   string
}

// IsRoot reports whether the entry is the traversal root.
func (entry FileEntry) IsRoot() bool {
	return entry.RelativePath == RootRelativePath
}

// PatternSet holds the resolved ignore and include glob patterns.
type PatternSet struct {
	IgnoreDirs      []string `json:"ignoreDirs,omitempty"`
	IgnoreFiles     []string `json:"ignoreFiles,omitempty"`
	IgnorePatterns  []string `json:"ignorePatterns,omitempty"`
	IncludeDirs     []string `json:"includeDirs,omitempty"`
	IncludeFiles    []string `json:"includeFiles,omitempty"`
	IncludePatterns []string `json:"includePatterns,omitempty"`
}

// HasIncludes reports whether any include pattern is configured.
func (set PatternSet) HasIncludes() bool {
	return len(set.IncludeDirs) > 0 || len(set.IncludeFiles) > 0 || len(set.IncludePatterns) > 0
}

// FileRecord is one aggregated file in the JSON side document.
type FileRecord struct {
	Name        string `json:"filename"`
	Path        string `json:"filepath"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
	Tokens      int    `json:"tokens,omitempty"`
	ReadFailure string `json:"error,omitempty"`
}

// TreeNode is one rendered tree entry in the JSON side document.
type TreeNode struct {
	Name        string      `json:"name"`
	Path        string      `json:"path"`
	Type        EntryKind   `json:"type"`
	Permissions string      `json:"permissions"`
	Owner       string      `json:"owner"`
	Size        int64       `json:"size,omitempty"`
	LinkTarget  string      `json:"target,omitempty"`
	Children    []*TreeNode `json:"children,omitempty"`
}
