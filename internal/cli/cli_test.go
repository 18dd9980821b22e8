package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/overview/internal/describe"
	"github.com/temirov/overview/internal/types"
)

var fixedNow = time.Date(2024, time.May, 6, 7, 8, 9, 0, time.Local)

type recordingCopier struct {
	copied []string
	err    error
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return copier.err
}

type testHarness struct {
	application *Application
	stdout      *bytes.Buffer
	logs        *observer.ObservedLogs
	copier      *recordingCopier
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	stdout := &bytes.Buffer{}
	copier := &recordingCopier{}
	application := &Application{
		Stdout:           stdout,
		Stderr:           &bytes.Buffer{},
		WorkingDirectory: t.TempDir(),
		HomeDirectory:    t.TempDir(),
		NewLogger: func(bool) (*zap.Logger, error) {
			return zap.New(core), nil
		},
		NewDescriber: newDescriptionClient,
		Copier:       copier,
		Now:          func() time.Time { return fixedNow },
	}
	return &testHarness{application: application, stdout: stdout, logs: logs, copier: copier}
}

func (harness *testHarness) execute(arguments ...string) error {
	return harness.application.Execute(context.Background(), arguments)
}

func writeProjectFile(t *testing.T, rootDirectory string, relativePath string, content string) {
	t.Helper()
	filePath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
}

// sampleProject creates a.py, b.py and tmp/c.py.
func sampleProject(t *testing.T) string {
	t.Helper()
	rootDirectory := t.TempDir()
	writeProjectFile(t, rootDirectory, "a.py", "print('a')\n")
	writeProjectFile(t, rootDirectory, "b.py", "print('b')\n")
	writeProjectFile(t, rootDirectory, "tmp/c.py", "print('c')\n")
	return rootDirectory
}

func blockFor(name string, relativePath string, content string) string {
	return "'" + name + "'\n``` File path = " + relativePath + "\n\n" + content + "\n```\n\n"
}

func clearAPIKeyEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("API_KEY", "")
	t.Setenv("api_key", "")
}

func TestIgnoredDirectoryContributesNothing(t *testing.T) {
	harness := newTestHarness(t)
	rootDirectory := sampleProject(t)

	require.NoError(t, harness.execute(rootDirectory, "-p", "-t", "--ignore-dirs", "tmp"))

	result := harness.stdout.String()
	assert.True(t, strings.HasPrefix(result, "Directory tree: "+rootDirectory+"\n"))
	assert.Contains(t, result, " a.py [file]\n")
	assert.Contains(t, result, " b.py [file]\n")
	assert.NotContains(t, result, "c.py")
	assert.True(t, strings.HasSuffix(result, blockFor("a.py", "a.py", "print('a')\n")+blockFor("b.py", "b.py", "print('b')\n")))
}

func TestIncludeOverridesIgnoredDirectory(t *testing.T) {
	harness := newTestHarness(t)
	rootDirectory := sampleProject(t)

	require.NoError(t, harness.execute(rootDirectory, "-p", "--ignore-dirs", "tmp", "--include-files", "c.py"))

	assert.Equal(t,
		blockFor("c.py", "tmp/c.py", "print('c')\n")+
			blockFor("a.py", "a.py", "print('a')\n")+
			blockFor("b.py", "b.py", "print('b')\n"),
		harness.stdout.String())
}

func TestUnreadableFileIsSkippedWithWarning(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	harness := newTestHarness(t)
	rootDirectory := sampleProject(t)
	lockedPath := filepath.Join(rootDirectory, "b.py")
	require.NoError(t, os.Chmod(lockedPath, 0o000))
	t.Cleanup(func() { _ = os.Chmod(lockedPath, 0o644) })

	require.NoError(t, harness.execute(rootDirectory, "-p"))

	result := harness.stdout.String()
	assert.Contains(t, result, blockFor("a.py", "a.py", "print('a')\n"))
	assert.Contains(t, result, blockFor("c.py", "tmp/c.py", "print('c')\n"))
	assert.Contains(t, result, "'b.py'\n``` File path = b.py\n\n[content unavailable:")
	assert.Equal(t, 1, harness.logs.FilterMessage("file content unavailable").Len())
}

func TestRerunsAreByteIdentical(t *testing.T) {
	rootDirectory := sampleProject(t)
	first := newTestHarness(t)
	second := newTestHarness(t)

	require.NoError(t, first.execute(rootDirectory, "-p", "-t"))
	require.NoError(t, second.execute(rootDirectory, "-p", "-t"))
	assert.Equal(t, first.stdout.String(), second.stdout.String())
}

func TestConfigurationErrors(t *testing.T) {
	clearAPIKeyEnvironment(t)
	rootDirectory := sampleProject(t)
	regularFile := filepath.Join(rootDirectory, "a.py")

	testCases := []struct {
		name      string
		arguments []string
		field     string
	}{
		{name: "missing_root", arguments: []string{filepath.Join(rootDirectory, "absent"), "-p"}, field: "root_dir"},
		{name: "root_is_file", arguments: []string{regularFile, "-p"}, field: "root_dir"},
		{name: "no_mode", arguments: []string{rootDirectory}, field: "mode"},
		{name: "description_without_key", arguments: []string{rootDirectory, "-p", "-description"}, field: "api"},
		{name: "negative_retries", arguments: []string{rootDirectory, "-p", "--retries", "-1"}, field: "retries"},
		{name: "malformed_pattern", arguments: []string{rootDirectory, "-p", "--ignore-files", "[abc"}, field: "ignore-files"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			harness := newTestHarness(t)
			executeErr := harness.execute(testCase.arguments...)
			var configError *types.ConfigError
			require.True(t, errors.As(executeErr, &configError), "expected ConfigError, got %v", executeErr)
			assert.Equal(t, testCase.field, configError.Field)
			assert.Empty(t, harness.stdout.String())
		})
	}
}

func newDescriptionServer(t *testing.T, statusCode int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(statusCode)
		_, _ = writer.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDescriptionMode(t *testing.T) {
	clearAPIKeyEnvironment(t)
	server := newDescriptionServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"A tiny script."}}],"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`)
	harness := newTestHarness(t)
	rootDirectory := sampleProject(t)

	require.NoError(t, harness.execute(rootDirectory, "-p", "--ignore-dirs", "tmp", "-description", "-api", "secret", "--base-url", server.URL, "-d", "Be brief."))

	assert.Equal(t,
		"'a.py'\n**Description:** A tiny script.\n``` File path = a.py\n\nprint('a')\n\n```\n\n"+
			"'b.py'\n**Description:** A tiny script.\n``` File path = b.py\n\nprint('b')\n\n```\n\n",
		harness.stdout.String())
	totals := harness.logs.FilterMessage("description token totals").All()
	require.Len(t, totals, 1)
	assert.Equal(t, int64(14), totals[0].ContextMap()["total"])
}

func TestDescriptionWithoutContentIsIgnored(t *testing.T) {
	clearAPIKeyEnvironment(t)
	harness := newTestHarness(t)
	harness.application.NewDescriber = func(describe.Config) (describe.Describer, error) {
		t.Fatal("description client must not be created for a tree-only run")
		return nil, nil
	}
	rootDirectory := sampleProject(t)

	require.NoError(t, harness.execute(rootDirectory, "-t", "-description"))
	assert.True(t, strings.HasPrefix(harness.stdout.String(), "Directory tree: "))
	assert.NotContains(t, harness.stdout.String(), "**Description:**")
	assert.Equal(t, 1, harness.logs.FilterMessage("description generation ignored without content aggregation").Len())
}

func TestDescriptionFailureUsesPlaceholder(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-environment")
	server := newDescriptionServer(t, http.StatusUnauthorized, `{"error":{"message":"invalid key"}}`)
	harness := newTestHarness(t)
	rootDirectory := sampleProject(t)

	require.NoError(t, harness.execute(rootDirectory, "-p", "--ignore-dirs", "tmp", "-description", "--base-url", server.URL))

	assert.Equal(t, 2, strings.Count(harness.stdout.String(), "**Description:** Description unavailable due to an API error.\n"))
	assert.Equal(t, 2, harness.logs.FilterMessage("description failed").Len())
}

func TestOutputTargetsAndClipboard(t *testing.T) {
	harness := newTestHarness(t)
	rootDirectory := sampleProject(t)

	require.NoError(t, harness.execute(rootDirectory, "-p", "-t", "-o", "auto", "--json", "overview.json", "--copy"))

	assert.Empty(t, harness.stdout.String())
	textPath := filepath.Join(harness.application.WorkingDirectory, "overview_20240506_070809.txt")
	text, readErr := os.ReadFile(textPath)
	require.NoError(t, readErr)
	assert.Contains(t, string(text), blockFor("c.py", "tmp/c.py", "print('c')\n"))
	require.Len(t, harness.copier.copied, 1)
	assert.Equal(t, string(text), harness.copier.copied[0])

	encoded, jsonErr := os.ReadFile(filepath.Join(harness.application.WorkingDirectory, "overview.json"))
	require.NoError(t, jsonErr)
	var sideDocument struct {
		Root     string             `json:"root"`
		Patterns types.PatternSet   `json:"patterns"`
		Tree     *types.TreeNode    `json:"tree"`
		Files    []types.FileRecord `json:"files"`
	}
	require.NoError(t, json.Unmarshal(encoded, &sideDocument))
	assert.Equal(t, rootDirectory, sideDocument.Root)
	assert.Contains(t, sideDocument.Patterns.IgnorePatterns, "__pycache__")
	require.NotNil(t, sideDocument.Tree)
	assert.Len(t, sideDocument.Tree.Children, 3)
	require.Len(t, sideDocument.Files, 3)
	assert.Equal(t, "tmp/c.py", sideDocument.Files[2].Path)
}

func TestClipboardFailureIsOnlyAWarning(t *testing.T) {
	harness := newTestHarness(t)
	harness.copier.err = errors.New("no clipboard")
	rootDirectory := sampleProject(t)

	require.NoError(t, harness.execute(rootDirectory, "-t", "--copy"))
	assert.Equal(t, 1, harness.logs.FilterMessage("clipboard copy failed").Len())
}

func TestConfigurationFileSuppliesDefaults(t *testing.T) {
	harness := newTestHarness(t)
	rootDirectory := sampleProject(t)
	writeProjectFile(t, harness.application.WorkingDirectory, ".overview.yaml",
		"content:\n  enabled: true\npatterns:\n  ignore_dirs: [tmp]\n")

	require.NoError(t, harness.execute(rootDirectory))
	assert.Equal(t, blockFor("a.py", "a.py", "print('a')\n")+blockFor("b.py", "b.py", "print('b')\n"), harness.stdout.String())

	flagHarness := newTestHarness(t)
	flagHarness.application.WorkingDirectory = harness.application.WorkingDirectory
	require.NoError(t, flagHarness.execute(rootDirectory, "--python=false", "-t"))
	assert.True(t, strings.HasPrefix(flagHarness.stdout.String(), "Directory tree: "))
	assert.NotContains(t, flagHarness.stdout.String(), "File path =")
}

func TestIgnoreFileAndExtensions(t *testing.T) {
	harness := newTestHarness(t)
	rootDirectory := sampleProject(t)
	writeProjectFile(t, rootDirectory, "notes.md", "# notes\n")
	writeProjectFile(t, harness.application.WorkingDirectory, "ignore.txt", "# generated\nb.py\n\ntmp/\n")

	require.NoError(t, harness.execute(rootDirectory, "-p", "--ignore-file", "ignore.txt", "--extensions", "py", "md"))
	assert.Equal(t,
		blockFor("a.py", "a.py", "print('a')\n")+blockFor("notes.md", "notes.md", "# notes\n"),
		harness.stdout.String())
}

func TestWildcardExtensionSelectsEveryFile(t *testing.T) {
	testCases := []struct {
		name          string
		configuration string
		arguments     []string
	}{
		{name: "flag", arguments: []string{"-p", "--extensions", "*"}},
		{name: "configuration file", configuration: "content:\n  extensions: [\"*\"]\n", arguments: []string{"-p"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			harness := newTestHarness(t)
			rootDirectory := t.TempDir()
			writeProjectFile(t, rootDirectory, "a.py", "print('a')\n")
			writeProjectFile(t, rootDirectory, "notes.md", "# notes\n")
			if testCase.configuration != "" {
				writeProjectFile(t, harness.application.WorkingDirectory, ".overview.yaml", testCase.configuration)
			}

			require.NoError(t, harness.execute(append([]string{rootDirectory}, testCase.arguments...)...))
			assert.Equal(t,
				blockFor("a.py", "a.py", "print('a')\n")+blockFor("notes.md", "notes.md", "# notes\n"),
				harness.stdout.String())
		})
	}
}

func TestMissingIgnoreFileEqualsNoIgnoreFile(t *testing.T) {
	rootDirectory := sampleProject(t)
	withMissing := newTestHarness(t)
	without := newTestHarness(t)

	require.NoError(t, withMissing.execute(rootDirectory, "-p", "-t", "--ignore-file", "absent.txt"))
	require.NoError(t, without.execute(rootDirectory, "-p", "-t"))
	assert.Equal(t, without.stdout.String(), withMissing.stdout.String())
	assert.Equal(t, 1, withMissing.logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestOnlyIncludedMode(t *testing.T) {
	harness := newTestHarness(t)
	rootDirectory := sampleProject(t)

	require.NoError(t, harness.execute(rootDirectory, "-p", "--include-files", "c.py", "--only-included"))
	assert.Equal(t, blockFor("c.py", "tmp/c.py", "print('c')\n"), harness.stdout.String())
}

func TestVersionAndInitConfiguration(t *testing.T) {
	harness := newTestHarness(t)
	require.NoError(t, harness.execute("--version"))
	assert.True(t, strings.HasPrefix(harness.stdout.String(), "overview version: "))

	initHarness := newTestHarness(t)
	require.NoError(t, initHarness.execute("--init-config", "local"))
	expectedPath := filepath.Join(initHarness.application.WorkingDirectory, ".overview.yaml")
	assert.Equal(t, "configuration written to "+expectedPath+"\n", initHarness.stdout.String())
	_, statErr := os.Stat(expectedPath)
	assert.NoError(t, statErr)
}
