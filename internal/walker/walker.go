// Package walker performs the depth-first traversal of a project directory and
// reports every entry that survives pattern resolution.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/temirov/overview/internal/patterns"
	"github.com/temirov/overview/internal/types"
	"github.com/temirov/overview/internal/utils"
)

// EventKind identifies the traversal step being reported.
type EventKind int

const (
	EventEnterDirectory EventKind = iota
	EventFile
	EventSymlink
	EventLeaveDirectory
)

func (kind EventKind) String() string {
	switch kind {
	case EventEnterDirectory:
		return "enter"
	case EventFile:
		return "file"
	case EventSymlink:
		return "symlink"
	case EventLeaveDirectory:
		return "leave"
	default:
		return "unknown"
	}
}

// Event is one traversal step.
type Event struct {
	Kind  EventKind
	Entry types.FileEntry
}

// Handler consumes traversal events. Returning an error stops the walk.
type Handler func(Event) error

// Options configures a traversal.
type Options struct {
	Root     string
	Resolver *patterns.Resolver
	Logger   *zap.Logger
}

// ErrNilHandler is returned by Walk when no handler is supplied.
var ErrNilHandler = errors.New("walker handler is nil")

var readDirectory = os.ReadDir

type pendingDirectory struct {
	entry   types.FileEntry
	emitted bool
}

type walkContext struct {
	ctx      context.Context
	root     string
	resolver *patterns.Resolver
	logger   *zap.Logger
	handler  Handler
	owners   *ownerCache
	pending  []*pendingDirectory
}

// Walk visits options.Root depth-first. A directory is reported before its contents.
// Within a directory, subdirectories come first and then the remaining entries, each
// group in lexical order, so repeated walks over an unchanged tree produce identical
// event sequences. Symbolic links are reported but never followed. Unreadable entries
// are logged and skipped.
func Walk(ctx context.Context, options Options, handler Handler) error {
	if handler == nil {
		return ErrNilHandler
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	resolver := options.Resolver
	if resolver == nil {
		resolver = patterns.NewResolver(types.PatternSet{}, false)
	}

	absoluteRoot, absoluteError := filepath.Abs(options.Root)
	if absoluteError != nil {
		return fmt.Errorf("resolving root %s: %w", options.Root, absoluteError)
	}
	absoluteRoot = filepath.Clean(absoluteRoot)
	rootInfo, statError := os.Stat(absoluteRoot)
	if statError != nil {
		return fmt.Errorf("stat root %s: %w", absoluteRoot, statError)
	}
	if !rootInfo.IsDir() {
		return fmt.Errorf("root %s is not a directory", absoluteRoot)
	}

	walk := &walkContext{
		ctx:      ctx,
		root:     absoluteRoot,
		resolver: resolver,
		logger:   logger,
		handler:  handler,
		owners:   newOwnerCache(),
	}
	rootEntry := walk.newEntry(absoluteRoot, types.RootRelativePath, filepath.Base(absoluteRoot), 0, types.EntryKindDirectory, rootInfo)
	return walk.walkDirectory(rootEntry, false)
}

func (walk *walkContext) walkDirectory(directory types.FileEntry, rescued bool) error {
	if rescued {
		walk.pending = append(walk.pending, &pendingDirectory{entry: directory})
	} else {
		if err := walk.flushPending(); err != nil {
			return err
		}
		if err := walk.handler(Event{Kind: EventEnterDirectory, Entry: directory}); err != nil {
			return err
		}
	}

	childrenError := walk.walkChildren(directory, rescued)

	emitted := true
	if rescued {
		last := walk.pending[len(walk.pending)-1]
		walk.pending = walk.pending[:len(walk.pending)-1]
		emitted = last.emitted
	}
	if childrenError != nil {
		return childrenError
	}
	if !emitted {
		return nil
	}
	return walk.handler(Event{Kind: EventLeaveDirectory, Entry: directory})
}

func (walk *walkContext) walkChildren(directory types.FileEntry, withinIgnored bool) error {
	directoryEntries, readError := readDirectory(directory.AbsolutePath)
	if readError != nil {
		// Entries read before the failure are still walked.
		walk.warn(&types.IOWarning{Path: directory.AbsolutePath, Operation: "reading directory", Err: readError})
	}
	sortDirectoriesFirst(directoryEntries)

	for _, directoryEntry := range directoryEntries {
		if err := walk.ctx.Err(); err != nil {
			return err
		}

		childPath := filepath.Join(directory.AbsolutePath, directoryEntry.Name())
		relativePath := utils.RelativePathOrSelf(childPath, walk.root)
		kind := kindOf(directoryEntry)

		decision := walk.resolver.Decide(relativePath, directoryEntry.Name(), kind, withinIgnored)
		if decision == patterns.DecisionSkip {
			walk.logger.Debug("ignored", zap.String("path", relativePath), zap.String("type", string(kind)))
			continue
		}

		entryInfo, infoError := directoryEntry.Info()
		if infoError != nil {
			walk.warn(&types.IOWarning{Path: childPath, Operation: "stat", Err: infoError})
			continue
		}
		entry := walk.newEntry(childPath, relativePath, directoryEntry.Name(), directory.Depth+1, kind, entryInfo)

		if kind == types.EntryKindDirectory {
			if err := walk.walkDirectory(entry, decision == patterns.DecisionRescue); err != nil {
				return err
			}
			continue
		}
		if err := walk.emitLeaf(entry); err != nil {
			return err
		}
	}
	return nil
}

func (walk *walkContext) emitLeaf(entry types.FileEntry) error {
	if err := walk.flushPending(); err != nil {
		return err
	}
	eventKind := EventFile
	if entry.Kind == types.EntryKindSymlink {
		eventKind = EventSymlink
	}
	return walk.handler(Event{Kind: eventKind, Entry: entry})
}

// flushPending reports rescued ancestor directories that have not been reported yet.
func (walk *walkContext) flushPending() error {
	for _, pending := range walk.pending {
		if pending.emitted {
			continue
		}
		pending.emitted = true
		if err := walk.handler(Event{Kind: EventEnterDirectory, Entry: pending.entry}); err != nil {
			return err
		}
	}
	return nil
}

func (walk *walkContext) newEntry(absolutePath string, relativePath string, name string, depth int, kind types.EntryKind, info fs.FileInfo) types.FileEntry {
	entry := types.FileEntry{
		AbsolutePath: absolutePath,
		RelativePath: relativePath,
		Name:         name,
		Depth:        depth,
		Kind:         kind,
		Size:         info.Size(),
		Mode:         info.Mode(),
		Owner:        walk.owners.lookup(info),
	}
	if kind == types.EntryKindSymlink {
		target, readLinkError := os.Readlink(absolutePath)
		if readLinkError != nil {
			walk.warn(&types.IOWarning{Path: absolutePath, Operation: "reading link", Err: readLinkError})
		} else {
			entry.LinkTarget = target
		}
	}
	return entry
}

func (walk *walkContext) warn(warning *types.IOWarning) {
	walk.logger.Warn("skipping unreadable entry",
		zap.String("path", warning.Path),
		zap.String("operation", warning.Operation),
		zap.Error(warning.Err),
	)
}

// sortDirectoriesFirst orders subdirectories before other entries, keeping the
// lexical order os.ReadDir returns within each group.
func sortDirectoriesFirst(directoryEntries []fs.DirEntry) {
	sort.SliceStable(directoryEntries, func(left, right int) bool {
		return kindOf(directoryEntries[left]) == types.EntryKindDirectory &&
			kindOf(directoryEntries[right]) != types.EntryKindDirectory
	})
}

func kindOf(directoryEntry fs.DirEntry) types.EntryKind {
	switch {
	case directoryEntry.Type()&fs.ModeSymlink != 0:
		return types.EntryKindSymlink
	case directoryEntry.IsDir():
		return types.EntryKindDirectory
	default:
		return types.EntryKindFile
	}
}
