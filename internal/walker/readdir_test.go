package walker

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWalkKeepsEntriesReadBeforeDirectoryError(t *testing.T) {
	rootDirectory := t.TempDir()
	for _, name := range []string{"a.py", "b.py", "c.py"} {
		require.NoError(t, os.WriteFile(filepath.Join(rootDirectory, name), []byte("pass\n"), 0o644))
	}

	readFailure := errors.New("device went away")
	previousReadDirectory := readDirectory
	t.Cleanup(func() { readDirectory = previousReadDirectory })
	readDirectory = func(directoryPath string) ([]fs.DirEntry, error) {
		directoryEntries, readError := previousReadDirectory(directoryPath)
		if readError != nil {
			return nil, readError
		}
		return directoryEntries[:2], readFailure
	}

	core, recorded := observer.New(zapcore.WarnLevel)
	var events []string
	walkError := Walk(context.Background(), Options{Root: rootDirectory, Logger: zap.New(core)}, func(event Event) error {
		events = append(events, event.Kind.String()+" "+event.Entry.RelativePath)
		return nil
	})
	require.NoError(t, walkError)

	assert.Equal(t, []string{"enter .", "file a.py", "file b.py", "leave ."}, events)
	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, rootDirectory, recorded.All()[0].ContextMap()["path"])
}
