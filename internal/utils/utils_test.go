package utils_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/overview/internal/utils"
)

func TestDeduplicatePatterns(t *testing.T) {
	result := utils.DeduplicatePatterns([]string{"tmp", " tmp ", "", "logs", "tmp", "  "})
	require.Equal(t, []string{"tmp", "logs"}, result)
}

func TestRelativePathOrSelf(t *testing.T) {
	rootDirectory := t.TempDir()
	testCases := []struct {
		name     string
		fullPath string
		expected string
	}{
		{name: "root itself", fullPath: rootDirectory, expected: "."},
		{name: "direct child", fullPath: filepath.Join(rootDirectory, "a.py"), expected: "a.py"},
		{name: "nested child", fullPath: filepath.Join(rootDirectory, "tmp", "c.py"), expected: "tmp/c.py"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, utils.RelativePathOrSelf(testCase.fullPath, rootDirectory))
		})
	}
}

func TestNormalizeExtensions(t *testing.T) {
	require.Equal(t, []string{".py", ".go"}, utils.NormalizeExtensions([]string{"py", ".PY", ".go", ""}))
}

func TestNormalizeExtensionsKeepsWildcard(t *testing.T) {
	require.Equal(t, []string{utils.AnyExtension, ".md"}, utils.NormalizeExtensions([]string{"*", "md", "*"}))
}

func TestHasExtension(t *testing.T) {
	extensions := []string{".py"}
	assert.True(t, utils.HasExtension("main.py", extensions))
	assert.True(t, utils.HasExtension("MAIN.PY", extensions))
	assert.False(t, utils.HasExtension("main.pyc", extensions))
	assert.False(t, utils.HasExtension("Makefile", extensions))
}

func TestIsBinary(t *testing.T) {
	assert.False(t, utils.IsBinary(nil))
	assert.False(t, utils.IsBinary([]byte("print('hello')\n")))
	assert.True(t, utils.IsBinary([]byte{0x00, 0x01}))
	assert.True(t, utils.IsBinary([]byte{0xff, 0xfe, 0x41}))
}

func TestDetectMimeType(t *testing.T) {
	assert.Equal(t, "text/plain; charset=utf-8", utils.DetectMimeType([]byte("plain text")))
	assert.Equal(t, "application/octet-stream", utils.DetectMimeType([]byte{0x00, 0x01, 0x02}))
}

func TestGetApplicationVersionPrefersLinkedVersion(t *testing.T) {
	previousVersion := utils.Version
	t.Cleanup(func() { utils.Version = previousVersion })
	utils.Version = "v9.9.9"
	require.Equal(t, "v9.9.9", utils.GetApplicationVersion())
}
